// Package orderlog пишет журнал по заказам платформы через logrus.
package orderlog

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/subscriptions/internal/domain"
)

// noOrderCode подставляется, когда запись не относится к конкретному заказу.
const noOrderCode = "null"

// Logger реализует domain.OrderLogger.
type Logger struct {
	logger *log.Entry
}

// New создаёт журнал заказов. Nil logger заменяется логгером по умолчанию.
func New(logger *log.Entry) *Logger {
	if logger == nil {
		logger = log.New().WithField("component", "order-log")
	}
	return &Logger{logger: logger}
}

// OrderInfo пишет информационную запись с кодом заказа и дополнительным контекстом.
func (l *Logger) OrderInfo(orderCode, message string, context map[string]any) {
	if orderCode == "" {
		orderCode = noOrderCode
	}
	entry := l.logger.WithField("order_code", orderCode)
	if len(context) > 0 {
		entry = entry.WithFields(log.Fields(context))
	}
	entry.Info(message)
}

var _ domain.OrderLogger = (*Logger)(nil)
