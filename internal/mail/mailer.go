package mail

import (
	"biblioteca/internal/config"
	"biblioteca/internal/entity"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends the notification emails the account lifecycle depends on.
type Mailer interface {
	SendActivationCode(name, email, code string) error
	SendRecoveryCode(name, email, code string) error
	SendLoanHistory(account *entity.DbAccount, loans []entity.DbLoan) error
}

// NewMailer returns an SMTP mailer, or a logging no-op sender when no SMTP
// host is configured so development setups work without a relay.
func NewMailer(cfg config.Config) Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logrus.Warn("SMTP not configured, emails will only be logged")
		return &logMailer{}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
		appURL: strings.TrimRight(cfg.AppURL, "/"),
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	appURL string
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

func (m *smtpMailer) SendActivationCode(name, email, code string) error {
	link := fmt.Sprintf("%s/ativar-conta?email=%s&codigo=%s", m.appURL, url.QueryEscape(email), code)
	body := fmt.Sprintf(`<h2>Olá %s,</h2>
<p>Seu código de ativação é: <strong>%s</strong></p>
<p>Use este código para ativar sua conta em nossa plataforma.</p>
<p>Ou clique no link abaixo:</p>
<a href="%s">Ativar minha conta</a>`, name, code, link)
	return m.send(email, "Ativação de conta", body)
}

func (m *smtpMailer) SendRecoveryCode(name, email, code string) error {
	link := fmt.Sprintf("%s/redefinir-senha?email=%s&codigo=%s", m.appURL, url.QueryEscape(email), code)
	body := fmt.Sprintf(`<h2>Olá %s,</h2>
<p>Seu código de recuperação é: <strong>%s</strong></p>
<p>Use este código para redefinir sua senha.</p>
<p>Ou clique no link abaixo:</p>
<a href="%s">Redefinir minha senha</a>`, name, code, link)
	return m.send(email, "Recuperação de senha", body)
}

func (m *smtpMailer) SendLoanHistory(account *entity.DbAccount, loans []entity.DbLoan) error {
	if account == nil {
		return fmt.Errorf("account is nil")
	}
	var rows strings.Builder
	for _, loan := range loans {
		title, author := "?", "?"
		if loan.Book != nil {
			title, author = loan.Book.Title, loan.Book.Author
		}
		rows.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			title, author,
			loan.LoanedAt.Format("02/01/2006"),
			loan.DueDate.Format("02/01/2006")))
	}
	body := fmt.Sprintf(`<h2>Histórico de Empréstimos Ativos</h2>
<p>Leitor: <strong>%s</strong></p>
<table border="1" cellpadding="6">
<tr><th>Livro</th><th>Autor</th><th>Data Empréstimo</th><th>Data Devolução</th></tr>
%s
</table>`, account.Name, rows.String())
	return m.send(account.Email, "Seu histórico de empréstimos", body)
}

var _ Mailer = (*smtpMailer)(nil)

// logMailer logs instead of sending. Codes still reach the operator via
// the structured log stream.
type logMailer struct{}

func (l *logMailer) SendActivationCode(name, email, code string) error {
	logrus.WithFields(logrus.Fields{"email": email, "code": code}).Info("activation email (not sent)")
	return nil
}

func (l *logMailer) SendRecoveryCode(name, email, code string) error {
	logrus.WithFields(logrus.Fields{"email": email, "code": code}).Info("recovery email (not sent)")
	return nil
}

func (l *logMailer) SendLoanHistory(account *entity.DbAccount, loans []entity.DbLoan) error {
	if account == nil {
		return fmt.Errorf("account is nil")
	}
	logrus.WithFields(logrus.Fields{"email": account.Email, "loans": len(loans)}).Info("loan history email (not sent)")
	return nil
}

var _ Mailer = (*logMailer)(nil)
