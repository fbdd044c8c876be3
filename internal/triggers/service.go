package triggers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/gearmarket-backend/internal/delivery"
	"github.com/angelmondragon/gearmarket-backend/internal/email"
	"github.com/angelmondragon/gearmarket-backend/internal/items"
	"github.com/angelmondragon/gearmarket-backend/internal/notifications"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/angelmondragon/gearmarket-backend/pkg/metrics"
)

// EmailResult is what happened on the email side of a trigger.
type EmailResult string

const (
	EmailSent       EmailResult = "sent"
	EmailFailed     EmailResult = "failed"
	EmailSuppressed EmailResult = "suppressed"
)

// Outcome reports both side effects of a trigger. A record failure and an
// email failure are independent; either may occur without the other.
type Outcome struct {
	RecordID  string
	RecordErr error
	Email     EmailResult
}

// Service fans one domain event out into a persisted record and a gated email.
// Errors are returned only for invalid input.
type Service interface {
	NewMessage(ctx context.Context, input NewMessageInput) (Outcome, error)
	TransactionUpdate(ctx context.Context, input TransactionUpdateInput) (Outcome, error)
	LogisticsQuote(ctx context.Context, input LogisticsQuoteInput) (Outcome, error)
	QuestionAnswered(ctx context.Context, input QuestionAnsweredInput) (Outcome, error)
	PaymentStatus(ctx context.Context, input PaymentStatusInput) (Outcome, error)
	ProductInterest(ctx context.Context, input ProductInterestInput) (Outcome, error)
	SystemAnnouncement(ctx context.Context, input SystemAnnouncementInput) (Outcome, error)
	PurchaseConfirmation(ctx context.Context, input PurchaseConfirmationInput) (Outcome, error)
}

// ServiceParams wires the trigger service.
type ServiceParams struct {
	Records  notifications.Service
	Gate     preferences.Gate
	Sender   delivery.Sender
	Renderer *email.Renderer
	Items    items.StatusReader
	Metrics  *metrics.DeliveryMetrics
	Logger   *logger.Logger
}

type service struct {
	records notifications.Service
	gate    preferences.Gate
	sender  delivery.Sender
	store   *email.Store
	items   items.StatusReader
	metrics *metrics.DeliveryMetrics
	logg    *logger.Logger
}

// NewService validates dependencies. Items is optional; without it transaction
// updates trust the caller's status.
func NewService(params ServiceParams) (Service, error) {
	if params.Records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification records service required")
	}
	if params.Gate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preference gate required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	if params.Renderer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email renderer required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		records: params.Records,
		gate:    params.Gate,
		sender:  params.Sender,
		store:   params.Renderer.Store(),
		items:   params.Items,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

// dispatch describes the record and email for a single trigger.
type dispatch struct {
	userID     string
	kind       enums.NotificationType
	templateID email.TemplateID
	title      string
	message    string
	link       string
	priority   enums.Priority
	data       map[string]any
}

func (s *service) NewMessage(ctx context.Context, in NewMessageInput) (Outcome, error) {
	if err := validateInput(enums.EventChatMessageSent, in); err != nil {
		return Outcome{}, err
	}
	sender := strings.TrimSpace(in.SenderName)
	title := "기어마켓 알림"
	message := in.MessagePreview
	if sender != "" {
		title = fmt.Sprintf("%s님의 새 메시지", sender)
		message = fmt.Sprintf("%s님이 메시지를 보냈습니다: %s", sender, in.MessagePreview)
	}
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypeNewMessage,
		templateID: email.TemplateNewMessage,
		title:      title,
		message:    message,
		link:       "/chat/" + in.ChatID,
		priority:   enums.PriorityNormal,
		data: map[string]any{
			"chatId":         in.ChatID,
			"senderId":       in.SenderID,
			"senderName":     sender,
			"messagePreview": in.MessagePreview,
			"productId":      in.ProductID,
			"productTitle":   in.ProductTitle,
			"isSystem":       sender == "",
		},
	}), nil
}

func (s *service) TransactionUpdate(ctx context.Context, in TransactionUpdateInput) (Outcome, error) {
	if err := validateInput(enums.EventTransactionStatusChanged, in); err != nil {
		return Outcome{}, err
	}
	status := s.currentStatus(ctx, in)
	label := s.store.StatusLabel(status)
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypeTransactionUpdate,
		templateID: email.TemplateTransactionUpdate,
		title:      fmt.Sprintf("거래 상태 변경: %s", label),
		message:    fmt.Sprintf("'%s' 거래가 %s 상태로 변경되었습니다.", in.ProductTitle, label),
		link:       "/transactions/" + in.TransactionID,
		priority:   enums.PriorityHigh,
		data: map[string]any{
			"transactionId": in.TransactionID,
			"itemId":        in.ItemID,
			"status":        status,
			"productTitle":  in.ProductTitle,
		},
	}), nil
}

// currentStatus prefers the item's stored status over the caller's, falling
// back to the caller's on any lookup failure.
func (s *service) currentStatus(ctx context.Context, in TransactionUpdateInput) string {
	if s.items == nil || strings.TrimSpace(in.ItemID) == "" {
		return in.Status
	}
	current, err := s.items.CurrentStatus(ctx, in.ItemID)
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id": in.ItemID,
			"status":  in.Status,
			"error":   err.Error(),
		})
		s.logg.Warn(logCtx, "item status lookup failed, using caller status")
		return in.Status
	}
	if strings.TrimSpace(current) == "" {
		return in.Status
	}
	if current != in.Status {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id":          in.ItemID,
			"requested_status": in.Status,
			"current_status":   current,
		})
		s.logg.Info(logCtx, "transaction status differs from caller, using stored status")
	}
	return current
}

func (s *service) LogisticsQuote(ctx context.Context, in LogisticsQuoteInput) (Outcome, error) {
	if err := validateInput(enums.EventLogisticsQuoteCreated, in); err != nil {
		return Outcome{}, err
	}
	amount := email.FormatKRW(in.Amount)
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypeLogisticsQuote,
		templateID: email.TemplateLogisticsQuote,
		title:      "운송 견적이 도착했습니다",
		message:    fmt.Sprintf("'%s' 상품의 %s 운송 견적: %s", in.ProductTitle, in.CarrierName, amount),
		link:       "/products/" + in.ProductID,
		priority:   enums.PriorityNormal,
		data: map[string]any{
			"quoteId":           in.QuoteID,
			"productId":         in.ProductID,
			"productTitle":      in.ProductTitle,
			"carrierName":       in.CarrierName,
			"amount":            in.Amount.String(),
			"amountText":        amount,
			"estimatedDays":     in.EstimatedDays,
			"insuranceIncluded": in.InsuranceIncluded,
		},
	}), nil
}

func (s *service) QuestionAnswered(ctx context.Context, in QuestionAnsweredInput) (Outcome, error) {
	if err := validateInput(enums.EventQuestionAnswered, in); err != nil {
		return Outcome{}, err
	}
	message := fmt.Sprintf("'%s' 상품 문의에 답변이 등록되었습니다.", in.ProductTitle)
	if seller := strings.TrimSpace(in.SellerName); seller != "" {
		message = fmt.Sprintf("%s님이 '%s' 상품 문의에 답변했습니다.", seller, in.ProductTitle)
	}
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypeQuestionAnswer,
		templateID: email.TemplateQuestionAnswer,
		title:      "문의에 답변이 달렸습니다",
		message:    message,
		link:       "/products/" + in.ProductID,
		priority:   enums.PriorityNormal,
		data: map[string]any{
			"productId":    in.ProductID,
			"productTitle": in.ProductTitle,
			"questionId":   in.QuestionID,
			"question":     in.Question,
			"answer":       in.Answer,
			"sellerName":   in.SellerName,
		},
	}), nil
}

var paymentCopy = map[string]struct{ title, message string }{
	"pending":   {"결제 대기 중", "'%s' 결제를 확인하고 있습니다."},
	"completed": {"결제 완료", "'%s' 결제가 완료되었습니다."},
	"failed":    {"결제 실패", "'%s' 결제에 실패했습니다. 결제 수단을 확인해 주세요."},
	"refunded":  {"환불 완료", "'%s' 결제 금액이 환불되었습니다."},
}

func (s *service) PaymentStatus(ctx context.Context, in PaymentStatusInput) (Outcome, error) {
	if err := validateInput(enums.EventPaymentStatusChanged, in); err != nil {
		return Outcome{}, err
	}
	text := paymentCopy[in.Status]
	priority := enums.PriorityHigh
	if in.Status == "failed" {
		priority = enums.PriorityUrgent
	}
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypePaymentStatus,
		templateID: email.TemplatePaymentStatus,
		title:      text.title,
		message:    fmt.Sprintf(text.message, in.ProductTitle),
		link:       "/transactions/" + in.TransactionID,
		priority:   priority,
		data: map[string]any{
			"transactionId": in.TransactionID,
			"productTitle":  in.ProductTitle,
			"paymentStatus": in.Status,
			"amount":        in.Amount.String(),
			"amountText":    email.FormatKRW(in.Amount),
		},
	}), nil
}

func (s *service) ProductInterest(ctx context.Context, in ProductInterestInput) (Outcome, error) {
	if err := validateInput(enums.EventProductInterest, in); err != nil {
		return Outcome{}, err
	}
	who := strings.TrimSpace(in.InterestedName)
	if who == "" {
		who = "누군가"
	} else {
		who += "님"
	}
	title := "관심 상품 알림"
	message := fmt.Sprintf("%s이 '%s' 상품을 찜했습니다.", who, in.ProductTitle)
	if in.Kind == "offer" {
		title = "가격 제안 알림"
		message = fmt.Sprintf("%s이 '%s' 상품에 가격을 제안했습니다.", who, in.ProductTitle)
	}
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypeProductInterest,
		templateID: email.TemplateProductInterest,
		title:      title,
		message:    message,
		link:       "/products/" + in.ProductID,
		priority:   enums.PriorityLow,
		data: map[string]any{
			"productId":      in.ProductID,
			"productTitle":   in.ProductTitle,
			"interestedName": in.InterestedName,
			"kind":           in.Kind,
		},
	}), nil
}

func (s *service) SystemAnnouncement(ctx context.Context, in SystemAnnouncementInput) (Outcome, error) {
	if err := validateInput(enums.EventSystemAnnouncement, in); err != nil {
		return Outcome{}, err
	}
	priority, err := enums.ParsePriority(in.Priority)
	if err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid announcement priority")
	}
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypeSystemAnnouncement,
		templateID: email.TemplateSystemAnnouncement,
		title:      in.Title,
		message:    in.Message,
		link:       in.Link,
		priority:   priority,
		data:       map[string]any{},
	}), nil
}

// PurchaseConfirmation is recorded and gated as a payment status notification
// but mailed with its own template.
func (s *service) PurchaseConfirmation(ctx context.Context, in PurchaseConfirmationInput) (Outcome, error) {
	if err := validateInput(enums.EventPurchaseConfirmed, in); err != nil {
		return Outcome{}, err
	}
	amount := email.FormatKRW(in.Amount)
	return s.fire(ctx, dispatch{
		userID:     in.UserID,
		kind:       enums.NotificationTypePaymentStatus,
		templateID: email.TemplatePurchaseConfirmation,
		title:      "구매가 완료되었습니다",
		message:    fmt.Sprintf("'%s' 상품을 %s에 구매했습니다.", in.ProductTitle, amount),
		link:       "/transactions/" + in.TransactionID,
		priority:   enums.PriorityHigh,
		data: map[string]any{
			"transactionId": in.TransactionID,
			"productId":     in.ProductID,
			"productTitle":  in.ProductTitle,
			"sellerName":    in.SellerName,
			"amount":        in.Amount.String(),
			"amountText":    amount,
		},
	}), nil
}

// fire runs the record write and the email path concurrently and waits for both.
func (s *service) fire(ctx context.Context, d dispatch) Outcome {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"user_id":           d.userID,
		"notification_type": string(d.kind),
	})

	var (
		out Outcome
		wg  sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.RecordID, out.RecordErr = s.writeRecord(ctx, d)
	}()
	go func() {
		defer wg.Done()
		out.Email = s.sendEmail(ctx, d)
	}()
	wg.Wait()
	return out
}

func (s *service) writeRecord(ctx context.Context, d dispatch) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("record write panicked: %v", r))
		}
		s.metrics.ObserveRecord(string(d.kind), err == nil)
		if err != nil {
			s.logg.Error(ctx, "notification record write failed", err)
		}
	}()
	return s.records.Create(ctx, notifications.CreateParams{
		UserID:   d.userID,
		Type:     d.kind,
		Title:    d.title,
		Message:  d.message,
		Data:     d.data,
		Link:     d.link,
		Priority: d.priority,
	})
}

func (s *service) sendEmail(ctx context.Context, d dispatch) EmailResult {
	if !s.gate.ShouldSend(ctx, d.userID, d.kind) {
		s.metrics.IncSuppressed(string(d.kind))
		s.logg.Info(ctx, "email suppressed by user preferences")
		return EmailSuppressed
	}

	data := make(map[string]any, len(d.data)+3)
	for k, v := range d.data {
		data[k] = v
	}
	data["title"] = d.title
	data["message"] = d.message
	data["link"] = d.link

	n := delivery.NewEmailNotification(d.userID, string(d.kind), d.templateID, data)
	if s.sender.Send(ctx, n) {
		return EmailSent
	}
	return EmailFailed
}
