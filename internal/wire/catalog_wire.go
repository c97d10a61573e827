package wire

import (
	"marketplace-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireVendor(r chi.Router, vendorHandler *adaptor.VendorHandler, guards routeGuards) {
	r.Route("/vendors", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", vendorHandler.ListVendors)
		r.Get("/popular", vendorHandler.GetPopular)
		r.Get("/{id}", vendorHandler.GetVendor)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(guards.auth, guards.admin)

			r.Get("/expired-subscriptions", vendorHandler.GetExpiredSubscriptions)
			r.Post("/", vendorHandler.CreateVendor)
			r.Put("/{id}", vendorHandler.UpdateVendor)
			r.Delete("/{id}", vendorHandler.DeleteVendor)
		})
	})
}

func wireBranch(r chi.Router, branchHandler *adaptor.BranchHandler, guards routeGuards) {
	r.Route("/branches", func(r chi.Router) {
		r.Get("/", branchHandler.ListBranches)
		r.Get("/nearby", branchHandler.GetNearby)
		r.Get("/popular", branchHandler.GetPopular)
		r.Get("/{id}", branchHandler.GetBranch)

		r.With(guards.auth).Get("/vendor/{vendor_id}", branchHandler.GetVendorBranches)

		// ==================== STAFF ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(guards.auth, guards.staff)

			r.Post("/vendor/{vendor_id}", branchHandler.CreateBranch)
			r.Put("/{id}", branchHandler.UpdateBranch)
			r.Delete("/{id}", branchHandler.DeactivateBranch)
			r.Post("/{id}/activate", branchHandler.ActivateBranch)
		})
	})
}

func wireCategory(r chi.Router, categoryHandler *adaptor.CategoryHandler, guards routeGuards) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.ListCategories)
		r.Get("/{id}", categoryHandler.GetCategory)

		r.Group(func(r chi.Router) {
			r.Use(guards.auth, guards.admin)

			r.Post("/", categoryHandler.CreateCategory)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})
	})
}

func wireSubcategory(r chi.Router, subcategoryHandler *adaptor.SubcategoryHandler, guards routeGuards) {
	r.Route("/subcategories", func(r chi.Router) {
		r.Get("/search", subcategoryHandler.Search)
		r.Get("/branches/{id}", subcategoryHandler.GetBranchSubcategories)
		r.Get("/branches/{id}/{sub_id}", subcategoryHandler.GetBranchSubcategory)

		r.Group(func(r chi.Router) {
			r.Use(guards.auth, guards.staff)

			r.Post("/branches/{id}", subcategoryHandler.CreateSubcategory)
			r.Put("/branches/{id}/{sub_id}", subcategoryHandler.UpdateSubcategory)
			r.Delete("/branches/{id}/{sub_id}", subcategoryHandler.DeleteSubcategory)
		})
	})
}

func wireProduct(r chi.Router, productHandler *adaptor.ProductHandler, guards routeGuards) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/{id}", productHandler.GetProduct)
		r.Get("/branches/{id}", productHandler.ListBranchProducts)
		r.Get("/branches/{id}/subcategories/{sub_id}", productHandler.ListSubcategoryProducts)

		r.Group(func(r chi.Router) {
			r.Use(guards.auth, guards.staff)

			r.Post("/branches/{id}", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)

			r.Post("/{id}/variations", productHandler.CreateVariation)
			r.Put("/variations/{id}", productHandler.UpdateVariation)
			r.Delete("/variations/{id}", productHandler.DeleteVariation)
		})
	})
}

func wireOffer(r chi.Router, offerHandler *adaptor.OfferHandler, guards routeGuards) {
	r.Route("/offers", func(r chi.Router) {
		r.Get("/active", offerHandler.ListActive)
		r.Get("/expired", offerHandler.ListExpired)
		r.Get("/{id}", offerHandler.GetOffer)

		r.Group(func(r chi.Router) {
			r.Use(guards.auth, guards.staff)

			r.Post("/branches/{id}", offerHandler.CreateForBranch)
			r.Post("/branches/{id}/subcategories/{sub_id}", offerHandler.CreateForSubcategory)
			r.Post("/products/{id}", offerHandler.CreateForProduct)
			r.Put("/{id}", offerHandler.UpdateOffer)
			r.Delete("/{id}", offerHandler.DeleteOffer)
		})
	})
}
