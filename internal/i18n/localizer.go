// Package i18n переводит строки админки, которые сервис возвращает пользователю.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// Ключи сообщений. Ключ совпадает с английским текстом.
const (
	MsgCantCreateOrder        = "Can't create order."
	MsgCreateOrderErrorRef    = "An error occurred when trying to create the order. Please try again. Error Reference: %s."
	MsgSubscriptionNotFound   = "Subscription not found"
	MsgSubscriptionCanceled   = "Subscription already canceled"
	MsgSubscriptionCanceledOK = "Subscription canceled with success!"
	MsgCancelSubscriptionErr  = "Error on cancel subscription"
)

var translations = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		MsgCantCreateOrder:        "Não foi possível criar o pedido.",
		MsgCreateOrderErrorRef:    "Ocorreu um erro ao tentar criar o pedido. Por favor, tente novamente. Referência do erro: %s.",
		MsgSubscriptionNotFound:   "Assinatura não encontrada",
		MsgSubscriptionCanceled:   "Assinatura já cancelada",
		MsgSubscriptionCanceledOK: "Assinatura cancelada com sucesso!",
		MsgCancelSubscriptionErr:  "Erro ao cancelar a assinatura",
	},
}

var supported = []language.Tag{language.English, language.BrazilianPortuguese}

// Localizer реализует domain.Localizer поверх golang.org/x/text.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer возвращает переводчик для локали вида "pt-BR" или "en".
// Неизвестная локаль сводится к ближайшей поддерживаемой, по умолчанию английской.
func NewLocalizer(locale string) *Localizer {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, messages := range translations {
		for key, text := range messages {
			// Ошибка возможна только при некорректном формате, а тексты статичны.
			_ = builder.SetString(tag, key, text)
		}
	}

	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		matcher := language.NewMatcher(supported)
		_, idx, _ := matcher.Match(parsed)
		tag = supported[idx]
	}

	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}
}

// Tag возвращает выбранную локаль.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Dashboard переводит ключ и подставляет аргументы.
func (l *Localizer) Dashboard(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

var _ domain.Localizer = (*Localizer)(nil)
