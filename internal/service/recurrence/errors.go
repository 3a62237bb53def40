package recurrence

import (
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
	"github.com/vladislavdragonenkov/subscriptions/internal/i18n"
)

// ErrorTranslator превращает внутреннюю ошибку в сообщение для пользователя.
type ErrorTranslator struct {
	localizer domain.Localizer
	logger    *log.Entry
	newRef    func() string
}

// NewErrorTranslator создаёт переводчик ошибок.
func NewErrorTranslator(localizer domain.Localizer, logger *log.Entry) *ErrorTranslator {
	if logger == nil {
		logger = log.New().WithField("component", "error-translator")
	}
	return &ErrorTranslator{
		localizer: localizer,
		logger:    logger,
		newRef:    uuid.NewString,
	}
}

// Translate журналирует ошибку и возвращает сообщение для показа.
// Сообщение *domain.UserError возвращается как есть, для остальных ошибок
// отдаётся общий текст со ссылкой, по которой запись находится в журнале.
func (t *ErrorTranslator) Translate(err error, orderCode string) string {
	var userErr *domain.UserError
	if errors.As(err, &userErr) {
		t.logger.WithError(err).WithField("order_code", orderCode).Warn("order creation rejected")
		return userErr.Message
	}

	ref := t.newRef()
	t.logger.WithError(err).WithFields(log.Fields{
		"order_code": orderCode,
		"error_ref":  ref,
	}).Error("order creation failed")
	return t.localizer.Dashboard(i18n.MsgCreateOrderErrorRef, ref)
}
