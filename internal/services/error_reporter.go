package services

import (
	"log/slog"

	"github.com/thereayou/microblog/internal/email"
)

// ErrorReporter рассылает администраторам (ADMINS) отчёты о паниках в обработчиках
type ErrorReporter struct {
	mailer Mailer
	from   string
	admins []string
}

func NewErrorReporter(mailer Mailer, from string, admins []string) *ErrorReporter {
	return &ErrorReporter{mailer: mailer, from: from, admins: admins}
}

// Report ничего не делает, если администраторы не заданы
func (r *ErrorReporter) Report(request string, recovered any, stack []byte) {
	if r == nil || r.mailer == nil || len(r.admins) == 0 {
		return
	}

	msg, err := email.ErrorReportMessage(r.from, r.admins, request, recovered, stack)
	if err != nil {
		slog.Error("failed to build error report", "error", err)
		return
	}
	r.mailer.SendAsync(msg)
}
