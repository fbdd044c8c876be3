package email

import "github.com/angelmondragon/gearmarket-backend/pkg/enums"

// TemplateID names an email template. Every notification type has one, plus
// purchase confirmation and the default used for unknown ids.
type TemplateID string

const (
	TemplateNewMessage           = TemplateID(enums.NotificationTypeNewMessage)
	TemplateTransactionUpdate    = TemplateID(enums.NotificationTypeTransactionUpdate)
	TemplateLogisticsQuote       = TemplateID(enums.NotificationTypeLogisticsQuote)
	TemplateQuestionAnswer       = TemplateID(enums.NotificationTypeQuestionAnswer)
	TemplatePaymentStatus        = TemplateID(enums.NotificationTypePaymentStatus)
	TemplateProductInterest      = TemplateID(enums.NotificationTypeProductInterest)
	TemplateSystemAnnouncement   = TemplateID(enums.NotificationTypeSystemAnnouncement)
	TemplatePurchaseConfirmation TemplateID = "purchase_confirmation"
	TemplateDefault              TemplateID = "default"
)

// Template is a subject/HTML/text triple with {{name}} placeholders.
type Template struct {
	Subject string
	HTML    string
	Text    string
}

const (
	neutralStatusColor = "#6B7280"
	subjectFromTitle   = "{{title}}"
)

var statusColors = map[enums.TransactionStatus]string{
	enums.TransactionStatusPending:   "#F59E0B",
	enums.TransactionStatusReserved:  "#3B82F6",
	enums.TransactionStatusPaid:      "#8B5CF6",
	enums.TransactionStatusShipped:   "#06B6D4",
	enums.TransactionStatusDelivered: "#10B981",
	enums.TransactionStatusCompleted: "#059669",
	enums.TransactionStatusConfirmed: "#059669",
	enums.TransactionStatusSold:      "#6366F1",
	enums.TransactionStatusCancelled: "#EF4444",
	enums.TransactionStatusRefunded:  "#F97316",
}

var statusLabels = map[enums.TransactionStatus]string{
	enums.TransactionStatusPending:   "거래 대기",
	enums.TransactionStatusReserved:  "예약중",
	enums.TransactionStatusPaid:      "결제 완료",
	enums.TransactionStatusShipped:   "배송중",
	enums.TransactionStatusDelivered: "배송 완료",
	enums.TransactionStatusCompleted: "거래 완료",
	enums.TransactionStatusConfirmed: "구매 확정",
	enums.TransactionStatusSold:      "판매 완료",
	enums.TransactionStatusCancelled: "거래 취소",
	enums.TransactionStatusRefunded:  "환불 완료",
}

var statusDescriptions = map[enums.TransactionStatus]string{
	enums.TransactionStatusPending:   "거래 요청이 접수되어 판매자의 확인을 기다리고 있습니다.",
	enums.TransactionStatusReserved:  "판매자가 상품을 예약했습니다. 결제를 진행해 주세요.",
	enums.TransactionStatusPaid:      "결제가 완료되었습니다. 판매자가 곧 상품을 발송합니다.",
	enums.TransactionStatusShipped:   "상품이 발송되었습니다. 배송 상황을 확인해 주세요.",
	enums.TransactionStatusDelivered: "상품이 도착했습니다. 상품을 확인한 뒤 구매를 확정해 주세요.",
	enums.TransactionStatusCompleted: "거래가 완료되었습니다. 기어마켓을 이용해 주셔서 감사합니다.",
	enums.TransactionStatusConfirmed: "구매가 확정되었습니다. 판매 대금이 정산됩니다.",
	enums.TransactionStatusSold:      "상품이 판매 완료되었습니다.",
	enums.TransactionStatusCancelled: "거래가 취소되었습니다.",
	enums.TransactionStatusRefunded:  "환불이 완료되었습니다.",
}

// Store holds the immutable template set and status lookup tables.
type Store struct {
	templates map[TemplateID]Template
}

// NewStore builds the template set. The result is never mutated.
func NewStore() *Store {
	return &Store{templates: builtinTemplates()}
}

// Lookup returns the template registered for id.
func (s *Store) Lookup(id TemplateID) (Template, bool) {
	tpl, ok := s.templates[id]
	return tpl, ok
}

// Resolve returns the template for id, or the default template when id is unknown.
func (s *Store) Resolve(id TemplateID) Template {
	if tpl, ok := s.templates[id]; ok {
		return tpl
	}
	return s.templates[TemplateDefault]
}

// StatusColor returns the badge color for a transaction status, gray when unknown.
func (s *Store) StatusColor(status string) string {
	if color, ok := statusColors[enums.TransactionStatus(status)]; ok {
		return color
	}
	return neutralStatusColor
}

// StatusLabel returns the Korean display label, or the raw status when unknown.
func (s *Store) StatusLabel(status string) string {
	if label, ok := statusLabels[enums.TransactionStatus(status)]; ok {
		return label
	}
	return status
}

// StatusDescription returns the explanatory sentence, or "" when unknown.
func (s *Store) StatusDescription(status string) string {
	return statusDescriptions[enums.TransactionStatus(status)]
}

func builtinTemplates() map[TemplateID]Template {
	return map[TemplateID]Template{
		TemplateNewMessage: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<table role="presentation" style="width:100%"><tr>
<td style="width:48px"><div style="width:40px;height:40px;border-radius:20px;background:#111827;color:#fff;text-align:center;line-height:40px;font-weight:bold">{{senderInitial}}</div></td>
<td><p style="margin:0;font-weight:bold">{{message}}</p><p style="margin:4px 0 0;color:#6B7280">{{productTitle}}</p></td>
</tr></table>
<blockquote style="margin:16px 0;padding:12px 16px;background:#F3F4F6;border-radius:8px">{{messagePreview}}</blockquote>
<p><a href="{{chatUrl}}" style="color:#2563EB">채팅방에서 답장하기</a></p>`),
			Text: layoutText(`{{message}}
상품: {{productTitle}}

"{{messagePreview}}"

채팅방에서 답장하기: {{chatUrl}}`),
		},
		TemplateTransactionUpdate: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 8px">{{productTitle}}</p>
<span style="display:inline-block;padding:4px 12px;border-radius:12px;background:{{statusColor}};color:#fff;font-weight:bold">{{statusLabel}}</span>
<p style="margin:16px 0">{{statusDescription}}</p>
<p><a href="{{transactionUrl}}" style="color:#2563EB">거래 상세 보기</a></p>`),
			Text: layoutText(`{{productTitle}}
거래 상태: {{statusLabel}}
{{statusDescription}}

거래 상세 보기: {{transactionUrl}}`),
		},
		TemplateLogisticsQuote: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 8px">{{message}}</p>
<table role="presentation" style="border-collapse:collapse">
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">상품</td><td>{{productTitle}}</td></tr>
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">운송사</td><td>{{carrierName}}</td></tr>
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">견적 금액</td><td>{{amountText}}</td></tr>
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">예상 소요</td><td>{{estimatedDays}}일</td></tr>
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">보험</td><td>{{insuranceText}}</td></tr>
</table>
<p><a href="{{productUrl}}" style="color:#2563EB">견적 확인하기</a></p>`),
			Text: layoutText(`{{message}}
상품: {{productTitle}}
운송사: {{carrierName}}
견적 금액: {{amountText}}
예상 소요: {{estimatedDays}}일
보험: {{insuranceText}}

견적 확인하기: {{productUrl}}`),
		},
		TemplateQuestionAnswer: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 8px">{{message}}</p>
<p style="margin:0;color:#6B7280">Q. {{question}}</p>
<p style="margin:8px 0 16px">A. {{answer}}</p>
<p><a href="{{productUrl}}" style="color:#2563EB">상품 보러 가기</a></p>`),
			Text: layoutText(`{{message}}
Q. {{question}}
A. {{answer}}

상품 보러 가기: {{productUrl}}`),
		},
		TemplatePaymentStatus: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 8px">{{message}}</p>
<p style="margin:0;font-size:20px;font-weight:bold">{{amountText}}</p>
<p><a href="{{transactionUrl}}" style="color:#2563EB">결제 내역 보기</a></p>`),
			Text: layoutText(`{{message}}
금액: {{amountText}}

결제 내역 보기: {{transactionUrl}}`),
		},
		TemplateProductInterest: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 16px">{{message}}</p>
<p><a href="{{productUrl}}" style="color:#2563EB">상품 보러 가기</a></p>`),
			Text: layoutText(`{{message}}

상품 보러 가기: {{productUrl}}`),
		},
		TemplateSystemAnnouncement: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 16px;white-space:pre-line">{{message}}</p>
<p><a href="{{link}}" style="color:#2563EB">자세히 보기</a></p>`),
			Text: layoutText(`{{message}}

자세히 보기: {{link}}`),
		},
		TemplatePurchaseConfirmation: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 8px">{{message}}</p>
<table role="presentation" style="border-collapse:collapse">
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">상품</td><td>{{productTitle}}</td></tr>
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">판매자</td><td>{{sellerName}}</td></tr>
<tr><td style="padding:4px 12px 4px 0;color:#6B7280">결제 금액</td><td>{{amountText}}</td></tr>
</table>
<p><a href="{{transactionUrl}}" style="color:#2563EB">주문 상세 보기</a></p>`),
			Text: layoutText(`{{message}}
상품: {{productTitle}}
판매자: {{sellerName}}
결제 금액: {{amountText}}

주문 상세 보기: {{transactionUrl}}`),
		},
		TemplateDefault: {
			Subject: subjectFromTitle,
			HTML: layoutHTML(`
<p style="margin:0 0 16px">{{message}}</p>
<p><a href="{{baseUrl}}" style="color:#2563EB">기어마켓 바로가기</a></p>`),
			Text: layoutText(`{{message}}

기어마켓 바로가기: {{baseUrl}}`),
		},
	}
}

func layoutHTML(body string) string {
	return `<!DOCTYPE html>
<html lang="ko"><head><meta charset="utf-8"><title>{{title}}</title></head>
<body style="margin:0;padding:24px;background:#F9FAFB;font-family:'Apple SD Gothic Neo','Malgun Gothic',sans-serif;color:#111827">
<div style="max-width:560px;margin:0 auto;background:#fff;border-radius:12px;padding:24px">
<h1 style="margin:0 0 16px;font-size:18px">{{title}}</h1>` + body + `
<hr style="border:none;border-top:1px solid #E5E7EB;margin:24px 0">
<p style="font-size:12px;color:#9CA3AF">이 메일은 기어마켓 알림 설정에 따라 발송되었습니다.
<a href="{{unsubscribeUrl}}" style="color:#9CA3AF">알림 설정 변경</a> · <a href="{{supportUrl}}" style="color:#9CA3AF">고객센터</a></p>
<p style="font-size:12px;color:#9CA3AF">© {{year}} 기어마켓</p>
</div></body></html>`
}

func layoutText(body string) string {
	return `{{title}}

` + body + `

--
알림 설정 변경: {{unsubscribeUrl}}
고객센터: {{supportUrl}}
© {{year}} 기어마켓`
}
