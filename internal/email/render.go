package email

import (
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Rendered is a fully substituted email.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer substitutes data into templates after deriving the auxiliary fields
// each template expects.
type Renderer struct {
	store   *Store
	baseURL string
	now     func() time.Time
}

// NewRenderer builds a renderer that links back to baseURL.
func NewRenderer(store *Store, baseURL string) *Renderer {
	if store == nil {
		store = NewStore()
	}
	return &Renderer{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Store exposes the template store backing this renderer.
func (r *Renderer) Store() *Store {
	return r.store
}

// Render replaces every {{key}} with the stringified value, or "" when the key is missing.
func Render(template string, data map[string]any) string {
	return substitute(template, data, false)
}

func substitute(template string, data map[string]any, escape bool) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		key := placeholderRe.FindStringSubmatch(token)[1]
		value := stringify(data[key])
		if escape {
			return html.EscapeString(value)
		}
		return value
	})
}

// Prepare returns a copy of data augmented with the derived fields for id.
func (r *Renderer) Prepare(id TemplateID, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+12)
	for k, v := range data {
		out[k] = v
	}

	switch id {
	case TemplateTransactionUpdate:
		status := stringify(out["status"])
		out["statusColor"] = r.store.StatusColor(status)
		out["statusLabel"] = r.store.StatusLabel(status)
		out["statusDescription"] = r.store.StatusDescription(status)
		out["transactionUrl"] = r.link("transactions", out["transactionId"])
	case TemplateNewMessage:
		out["senderInitial"] = senderInitial(stringify(out["senderName"]))
		out["chatUrl"] = r.link("chat", out["chatId"])
	case TemplateLogisticsQuote:
		out["productUrl"] = r.link("products", out["productId"])
		out["insuranceText"] = insuranceText(out["insuranceIncluded"])
	case TemplateQuestionAnswer, TemplateProductInterest:
		out["productUrl"] = r.link("products", out["productId"])
	case TemplatePaymentStatus, TemplatePurchaseConfirmation:
		out["transactionUrl"] = r.link("transactions", out["transactionId"])
	}

	if _, ok := out["amountText"]; !ok {
		if amount, ok := ParseAmount(out["amount"]); ok {
			out["amountText"] = FormatKRW(amount)
		}
	}

	if link, ok := out["link"]; ok {
		out["link"] = r.absolute(stringify(link))
	}

	out["unsubscribeUrl"] = r.baseURL + "/settings/notifications"
	out["supportUrl"] = r.baseURL + "/support"
	out["baseUrl"] = r.baseURL
	out["year"] = r.now().Year()
	return out
}

// RenderEmail prepares data for id and renders subject, HTML and text bodies.
// Unknown ids render with the default template.
func (r *Renderer) RenderEmail(id TemplateID, data map[string]any) Rendered {
	prepared := r.Prepare(id, data)
	tpl := r.store.Resolve(id)
	return Rendered{
		Subject: Render(tpl.Subject, prepared),
		HTML:    substitute(tpl.HTML, prepared, true),
		Text:    Render(tpl.Text, prepared),
	}
}

func (r *Renderer) link(section string, id any) string {
	value := stringify(id)
	if value == "" {
		return r.baseURL + "/" + section
	}
	return r.baseURL + "/" + section + "/" + value
}

// absolute resolves in-app paths against the base URL so mail clients can
// follow them. Full URLs pass through; an empty link points at the home page.
func (r *Renderer) absolute(link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return r.baseURL
	case strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//"):
		return r.baseURL + link
	default:
		return link
	}
}

func senderInitial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	first, _ := utf8.DecodeRuneInString(name)
	return string(first)
}

func insuranceText(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "포함"
		}
	case string:
		if strings.EqualFold(v, "true") {
			return "포함"
		}
	}
	return "미포함"
}
