package triggers

import (
	"reflect"
	"strings"

	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NewMessageInput describes a chat message. An empty SenderName marks a
// system-generated message.
type NewMessageInput struct {
	UserID         string `json:"userId" validate:"required"`
	ChatID         string `json:"chatId" validate:"required"`
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName"`
	MessagePreview string `json:"messagePreview" validate:"required"`
	ProductID      string `json:"productId"`
	ProductTitle   string `json:"productTitle"`
}

// TransactionUpdateInput carries the status the caller believes is current;
// the item's stored status wins when it can be read.
type TransactionUpdateInput struct {
	UserID        string `json:"userId" validate:"required"`
	TransactionID string `json:"transactionId" validate:"required"`
	ItemID        string `json:"itemId"`
	Status        string `json:"status" validate:"required"`
	ProductTitle  string `json:"productTitle" validate:"required"`
}

type LogisticsQuoteInput struct {
	UserID            string          `json:"userId" validate:"required"`
	QuoteID           string          `json:"quoteId" validate:"required"`
	ProductID         string          `json:"productId" validate:"required"`
	ProductTitle      string          `json:"productTitle" validate:"required"`
	CarrierName       string          `json:"carrierName" validate:"required"`
	Amount            decimal.Decimal `json:"amount"`
	EstimatedDays     int             `json:"estimatedDays" validate:"gte=0"`
	InsuranceIncluded bool            `json:"insuranceIncluded"`
}

type QuestionAnsweredInput struct {
	UserID       string `json:"userId" validate:"required"`
	ProductID    string `json:"productId" validate:"required"`
	ProductTitle string `json:"productTitle" validate:"required"`
	QuestionID   string `json:"questionId"`
	Question     string `json:"question" validate:"required"`
	Answer       string `json:"answer" validate:"required"`
	SellerName   string `json:"sellerName"`
}

type PaymentStatusInput struct {
	UserID        string          `json:"userId" validate:"required"`
	TransactionID string          `json:"transactionId" validate:"required"`
	ProductTitle  string          `json:"productTitle" validate:"required"`
	Status        string          `json:"status" validate:"required,oneof=pending completed failed refunded"`
	Amount        decimal.Decimal `json:"amount"`
}

type ProductInterestInput struct {
	UserID         string `json:"userId" validate:"required"`
	ProductID      string `json:"productId" validate:"required"`
	ProductTitle   string `json:"productTitle" validate:"required"`
	InterestedName string `json:"interestedName"`
	Kind           string `json:"kind" validate:"required,oneof=like offer"`
}

type SystemAnnouncementInput struct {
	UserID   string `json:"userId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Link     string `json:"link"`
	Priority string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

type PurchaseConfirmationInput struct {
	UserID        string          `json:"userId" validate:"required"`
	TransactionID string          `json:"transactionId" validate:"required"`
	ProductID     string          `json:"productId"`
	ProductTitle  string          `json:"productTitle" validate:"required"`
	SellerName    string          `json:"sellerName"`
	Amount        decimal.Decimal `json:"amount"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func validateInput(kind enums.DomainEventType, input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trigger input")
	}
	details := map[string]string{}
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid "+string(kind)+" input").WithDetails(details)
}
