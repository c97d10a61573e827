package request

type NotificationListRequest struct {
	Type  *string `validate:"omitempty,oneof=order system offers other"`
	Limit int
}
