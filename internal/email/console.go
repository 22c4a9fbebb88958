package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

type consoleService struct {
	fromEmail  string
	subjPrefix string
}

var _ Service = (*consoleService)(nil)

// NewConsoleService returns a Service that writes messages to the process log
// instead of delivering them. Used in development when no SendGrid key is set.
func NewConsoleService(appName, fromEmail string) Service {
	return &consoleService{
		fromEmail:  fromEmail,
		subjPrefix: "[" + appName + "] ",
	}
}

func (svc *consoleService) Send(_ context.Context, msg Message) error {
	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\r\n", svc.fromEmail)
	fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	fmt.Fprintf(body, "To: %s <%s>\r\n", msg.ToName, msg.ToEmail)
	fmt.Fprint(body, "\r\n")
	if msg.TextBody != "" {
		fmt.Fprintf(body, "%s\r\n", msg.TextBody)
	} else {
		fmt.Fprintf(body, "%s\r\n", msg.HTMLBody)
	}

	log.Println(body.String())
	return nil
}
