package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-api/internal/data/entity"
	"marketplace-api/internal/data/repository"
	"marketplace-api/pkg/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var testLog = zap.NewNop()

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ---------- otp ----------

type fakeOTPRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.OTP
	err  error
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{rows: map[uuid.UUID]*entity.OTP{}}
}

func (f *fakeOTPRepo) Replace(_ context.Context, otp *entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for id, row := range f.rows {
		if row.UserID == otp.UserID && row.Purpose == otp.Purpose && !row.IsUsed {
			delete(f.rows, id)
		}
	}
	cp := *otp
	f.rows[otp.ID] = &cp
	return nil
}

func (f *fakeOTPRepo) FindUnused(_ context.Context, userID uuid.UUID, purpose entity.OTPPurpose, contact string) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *entity.OTP
	for _, row := range f.rows {
		if row.UserID != userID || row.Purpose != purpose || row.IsUsed || row.Contact() != contact {
			continue
		}
		if found == nil || row.CreatedAt.After(found.CreatedAt) {
			found = row
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (f *fakeOTPRepo) RecordFailedAttempt(_ context.Context, id uuid.UUID, exhausted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return errors.New("not found")
	}
	row.Attempts++
	row.IsUsed = row.IsUsed || exhausted
	return nil
}

func (f *fakeOTPRepo) MarkAsUsed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return errors.New("not found")
	}
	row.IsUsed = true
	return nil
}

func (f *fakeOTPRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, row := range f.rows {
		if row.ExpiresAt.Before(now) {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeOTPRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (f *fakeEmail) Send(_ context.Context, msg *mailer.Message) (*mailer.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	return &mailer.SendResult{Provider: "fake", Success: true}, nil
}

func (f *fakeEmail) Name() string { return "fake" }

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeSMS) SendSMS(_ context.Context, to, message string) (*mailer.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return &mailer.SendResult{Provider: "fake-sms", Success: false}, nil
	}
	f.sent = append(f.sent, to+"|"+message)
	return &mailer.SendResult{Provider: "fake-sms", Success: true}, nil
}

// stubOTP records calls and returns canned results.
type stubOTP struct {
	issued   []entity.OTPPurpose
	contacts []string
	issue    *IssueResult
	verify   *VerifyResult
}

func (s *stubOTP) Issue(_ context.Context, _ uuid.UUID, contact string, purpose entity.OTPPurpose) (*IssueResult, error) {
	s.issued = append(s.issued, purpose)
	s.contacts = append(s.contacts, contact)
	if s.issue != nil {
		return s.issue, nil
	}
	return &IssueResult{Success: true, Message: "OTP sent successfully"}, nil
}

func (s *stubOTP) Verify(_ context.Context, _ uuid.UUID, _, _ string, _ entity.OTPPurpose) (*VerifyResult, error) {
	if s.verify != nil {
		return s.verify, nil
	}
	return &VerifyResult{Success: true, Message: MsgOTPVerified}, nil
}

func (s *stubOTP) SweepExpired(context.Context) (int64, error) { return 0, nil }

// ---------- users & sessions ----------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) find(match func(*entity.User) bool) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (f *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *entity.User
	for _, u := range f.users {
		if u.PhoneNumber != phone && u.Phone() != phone {
			continue
		}
		if found != nil {
			return nil, repository.ErrAmbiguousPhone
		}
		cp := *u
		found = &cp
	}
	return found, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return errors.New("not found")
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateFCMToken(_ context.Context, id uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.FCMToken = &token
	return nil
}

func (f *fakeUserRepo) get(id uuid.UUID) *entity.User {
	return f.find(func(u *entity.User) bool { return u.ID == id })
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*entity.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.RefreshTokenID] = &cp
	return nil
}

func (f *fakeSessionRepo) FindByTokenID(_ context.Context, tokenID string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenID]
	if !ok || s.RevokedAt != nil {
		return errors.New("session not found or already revoked")
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (f *fakeSessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, s := range f.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeSessionRepo) CleanExpiredSessions(context.Context) (int64, error) { return 0, nil }

// ---------- catalog ----------

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*entity.Vendor
	last    repository.VendorFilter
}

func newFakeVendorRepo(vendors ...*entity.Vendor) *fakeVendorRepo {
	f := &fakeVendorRepo{vendors: map[uuid.UUID]*entity.Vendor{}}
	for _, v := range vendors {
		f.vendors[v.ID] = v
	}
	return f
}

func (f *fakeVendorRepo) Create(_ context.Context, v *entity.Vendor) error {
	f.vendors[v.ID] = v
	return nil
}

func (f *fakeVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Vendor, error) {
	return f.vendors[id], nil
}

func (f *fakeVendorRepo) matching(filter repository.VendorFilter) []*entity.Vendor {
	var out []*entity.Vendor
	for _, v := range f.vendors {
		if filter.IDs != nil && !containsID(filter.IDs, v.ID) {
			continue
		}
		if filter.IsActive != nil && v.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(*filter.Search)) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeVendorRepo) FindAll(_ context.Context, filter repository.VendorFilter) ([]*entity.Vendor, error) {
	f.last = filter
	return paginate(f.matching(filter), filter.Limit, filter.Offset), nil
}

func (f *fakeVendorRepo) CountAll(_ context.Context, filter repository.VendorFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeVendorRepo) FindPopular(_ context.Context, limit int) ([]*entity.Vendor, error) {
	out := f.matching(repository.VendorFilter{})
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return paginate(out, limit, 0), nil
}

func (f *fakeVendorRepo) FindExpiredSubscriptions(_ context.Context, now time.Time) ([]*entity.Vendor, error) {
	var out []*entity.Vendor
	for _, v := range f.vendors {
		if v.SubscriptionEndsAt().Before(now) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVendorRepo) Update(_ context.Context, v *entity.Vendor) error {
	f.vendors[v.ID] = v
	return nil
}

func (f *fakeVendorRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	v, ok := f.vendors[id]
	if !ok {
		return errors.New("not found")
	}
	v.IsActive = false
	return nil
}

type fakeBranchRepo struct {
	branches map[uuid.UUID]*entity.Branch
	last     repository.BranchFilter
}

func newFakeBranchRepo(branches ...*entity.Branch) *fakeBranchRepo {
	f := &fakeBranchRepo{branches: map[uuid.UUID]*entity.Branch{}}
	for _, b := range branches {
		f.branches[b.ID] = b
	}
	return f
}

func (f *fakeBranchRepo) Create(_ context.Context, b *entity.Branch) error {
	f.branches[b.ID] = b
	return nil
}

func (f *fakeBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Branch, error) {
	return f.branches[id], nil
}

func (f *fakeBranchRepo) matching(filter repository.BranchFilter) []*entity.Branch {
	var out []*entity.Branch
	for _, b := range f.branches {
		if filter.VendorID != nil && b.VendorID != *filter.VendorID {
			continue
		}
		if filter.IsActive != nil && b.IsActive != *filter.IsActive {
			continue
		}
		if filter.MinRating != nil && b.Rating < *filter.MinRating {
			continue
		}
		if filter.Box != nil && (b.Lat < filter.Box.MinLat || b.Lat > filter.Box.MaxLat ||
			b.Lng < filter.Box.MinLng || b.Lng > filter.Box.MaxLng) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeBranchRepo) FindAll(_ context.Context, filter repository.BranchFilter) ([]*entity.Branch, error) {
	f.last = filter
	return paginate(f.matching(filter), filter.Limit, filter.Offset), nil
}

func (f *fakeBranchRepo) CountAll(_ context.Context, filter repository.BranchFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeBranchRepo) FindPopular(_ context.Context, limit int) ([]*entity.Branch, error) {
	out := f.matching(repository.BranchFilter{})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].TotalReviews > out[j].TotalReviews
	})
	return paginate(out, limit, 0), nil
}

func (f *fakeBranchRepo) Update(_ context.Context, b *entity.Branch) error {
	f.branches[b.ID] = b
	return nil
}

func (f *fakeBranchRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	b, ok := f.branches[id]
	if !ok {
		return errors.New("not found")
	}
	b.IsActive = active
	return nil
}

type fakeSubcategoryRepo struct {
	subs map[uuid.UUID]*entity.Subcategory
}

func newFakeSubcategoryRepo(subs ...*entity.Subcategory) *fakeSubcategoryRepo {
	f := &fakeSubcategoryRepo{subs: map[uuid.UUID]*entity.Subcategory{}}
	for _, s := range subs {
		f.subs[s.ID] = s
	}
	return f
}

func (f *fakeSubcategoryRepo) Create(_ context.Context, s *entity.Subcategory) error {
	f.subs[s.ID] = s
	return nil
}

func (f *fakeSubcategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Subcategory, error) {
	return f.subs[id], nil
}

func (f *fakeSubcategoryRepo) FindAll(_ context.Context, filter repository.SubcategoryFilter) ([]*entity.Subcategory, error) {
	var out []*entity.Subcategory
	for _, s := range f.subs {
		if filter.BranchID != nil && s.BranchID != *filter.BranchID {
			continue
		}
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeSubcategoryRepo) Update(_ context.Context, s *entity.Subcategory) error {
	f.subs[s.ID] = s
	return nil
}

func (f *fakeSubcategoryRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	s, ok := f.subs[id]
	if !ok {
		return errors.New("not found")
	}
	s.IsActive = false
	return nil
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entity.Category
	subCount   int64
	deleted    []uuid.UUID
}

func newFakeCategoryRepo(cats ...*entity.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{categories: map[uuid.UUID]*entity.Category{}}
	for _, c := range cats {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	return f.categories[id], nil
}

func (f *fakeCategoryRepo) FindByName(_ context.Context, name string) (*entity.Category, error) {
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) FindAll(context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCategoryRepo) CountSubcategories(context.Context, uuid.UUID) (int64, error) {
	return f.subCount, nil
}

type fakeProductRepo struct {
	products   map[uuid.UUID]*entity.Product
	variations map[uuid.UUID]*entity.ProductVariation
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	f := &fakeProductRepo{
		products:   map[uuid.UUID]*entity.Product{},
		variations: map[uuid.UUID]*entity.ProductVariation{},
	}
	for _, p := range products {
		f.products[p.ID] = p
		for _, v := range p.Variations {
			f.variations[v.ID] = v
		}
	}
	return f
}

func (f *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	f.products[p.ID] = p
	for _, v := range p.Variations {
		f.variations[v.ID] = v
	}
	return nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) matching(filter repository.ProductFilter) []*entity.Product {
	var out []*entity.Product
	for _, p := range f.products {
		if filter.BranchID != nil && p.BranchID != *filter.BranchID {
			continue
		}
		if filter.SubcategoryID != nil && p.SubcategoryID != *filter.SubcategoryID {
			continue
		}
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeProductRepo) FindAll(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	return paginate(f.matching(filter), filter.Limit, filter.Offset), nil
}

func (f *fakeProductRepo) CountAll(_ context.Context, filter repository.ProductFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := f.products[id]
	if !ok {
		return errors.New("not found")
	}
	p.IsActive = false
	return nil
}

func (f *fakeProductRepo) CreateVariation(_ context.Context, v *entity.ProductVariation) error {
	f.variations[v.ID] = v
	if p, ok := f.products[v.ProductID]; ok {
		p.Variations = append(p.Variations, v)
	}
	return nil
}

func (f *fakeProductRepo) FindVariationByID(_ context.Context, id uuid.UUID) (*entity.ProductVariation, error) {
	return f.variations[id], nil
}

func (f *fakeProductRepo) UpdateVariation(_ context.Context, v *entity.ProductVariation) error {
	f.variations[v.ID] = v
	return nil
}

func (f *fakeProductRepo) DeleteVariation(_ context.Context, id uuid.UUID) error {
	delete(f.variations, id)
	return nil
}

type fakeOfferRepo struct {
	offers []*entity.Offer
	names  map[uuid.UUID]string
}

func newFakeOfferRepo(offers ...*entity.Offer) *fakeOfferRepo {
	return &fakeOfferRepo{offers: offers, names: map[uuid.UUID]string{}}
}

func (f *fakeOfferRepo) Create(_ context.Context, o *entity.Offer) error {
	f.offers = append(f.offers, o)
	return nil
}

func (f *fakeOfferRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Offer, error) {
	for _, o := range f.offers {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOfferRepo) FindActiveByEntity(_ context.Context, ref entity.EntityRef, now time.Time) ([]*entity.Offer, error) {
	var out []*entity.Offer
	for _, o := range f.offers {
		if o.Target == ref && o.IsValid(now) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOfferRepo) valid(filter repository.OfferFilter, now time.Time) []*entity.Offer {
	var out []*entity.Offer
	for _, o := range f.offers {
		if !o.IsValid(now) {
			continue
		}
		if filter.EntityType != nil && o.Target.Type() != *filter.EntityType {
			continue
		}
		if filter.EntityID != nil && o.Target.ID() != *filter.EntityID {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeOfferRepo) FindValid(_ context.Context, filter repository.OfferFilter, now time.Time) ([]*entity.Offer, error) {
	return paginate(f.valid(filter, now), filter.Limit, filter.Offset), nil
}

func (f *fakeOfferRepo) CountValid(_ context.Context, filter repository.OfferFilter, now time.Time) (int64, error) {
	return int64(len(f.valid(filter, now))), nil
}

func (f *fakeOfferRepo) expired(now time.Time) []*entity.Offer {
	var out []*entity.Offer
	for _, o := range f.offers {
		if o.IsExpired(now) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.After(out[j].EndDate) })
	return out
}

func (f *fakeOfferRepo) FindExpired(_ context.Context, now time.Time, limit, offset int) ([]*entity.Offer, error) {
	return paginate(f.expired(now), limit, offset), nil
}

func (f *fakeOfferRepo) CountExpired(_ context.Context, now time.Time) (int64, error) {
	return int64(len(f.expired(now))), nil
}

func (f *fakeOfferRepo) FindEntityName(_ context.Context, ref entity.EntityRef) (string, error) {
	return f.names[ref.ID()], nil
}

func (f *fakeOfferRepo) Update(_ context.Context, o *entity.Offer) error {
	for i, cur := range f.offers {
		if cur.ID == o.ID {
			f.offers[i] = o
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeOfferRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	for _, o := range f.offers {
		if o.ID == id {
			o.IsActive = false
			return nil
		}
	}
	return errors.New("not found")
}

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*entity.Review
	stats   *entity.ReviewStats
}

func newFakeReviewRepo(reviews ...*entity.Review) *fakeReviewRepo {
	f := &fakeReviewRepo{reviews: map[uuid.UUID]*entity.Review{}}
	for _, r := range reviews {
		f.reviews[r.ID] = r
	}
	return f
}

func (f *fakeReviewRepo) Create(_ context.Context, r *entity.Review) error {
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	return f.reviews[id], nil
}

func (f *fakeReviewRepo) matching(filter repository.ReviewFilter) []*entity.Review {
	var out []*entity.Review
	for _, r := range f.reviews {
		if filter.BranchID != nil && r.BranchID != *filter.BranchID {
			continue
		}
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Rating != nil && r.Rating != *filter.Rating {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeReviewRepo) FindAll(_ context.Context, filter repository.ReviewFilter) ([]*entity.Review, error) {
	return paginate(f.matching(filter), filter.Limit, filter.Offset), nil
}

func (f *fakeReviewRepo) CountAll(_ context.Context, filter repository.ReviewFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeReviewRepo) FindByUserAndBranch(_ context.Context, userID, branchID uuid.UUID) (*entity.Review, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.BranchID == branchID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, r *entity.Review) error {
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) GetBranchStats(context.Context, uuid.UUID) (*entity.ReviewStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &entity.ReviewStats{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}, nil
}

type fakeNotificationRepo struct {
	items []*entity.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	for _, n := range f.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationRepo) FindByUser(_ context.Context, userID uuid.UUID, kind *entity.NotificationType, limit int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range f.items {
		if n.UserID != userID || (kind != nil && n.Type != *kind) {
			continue
		}
		out = append(out, n)
	}
	return paginate(out, limit, 0), nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, item := range f.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	for _, n := range f.items {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return errors.New("not found")
}

// ---------- helpers ----------

func paginate[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, cur := range ids {
		if cur == id {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
