// Package outreach drafts email, DM and SMS copy for a lead.
package outreach

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-scout/internal/model"
)

// DefaultSender signs outgoing email drafts when no sender is configured.
const DefaultSender = "Alex"

// Alternatives holds tone variants of the standard drafts.
type Alternatives struct {
	Formal model.OutreachMessages `json:"formal"`
	Casual model.OutreachMessages `json:"casual"`
}

// Composer renders outreach drafts. It is stateless apart from the sender
// name and safe for concurrent use.
type Composer struct {
	sender string
}

// NewComposer creates a Composer signing emails as sender.
func NewComposer(sender string) *Composer {
	if strings.TrimSpace(sender) == "" {
		sender = DefaultSender
	}
	return &Composer{sender: sender}
}

type draftInput struct {
	business string
	owner    string
	hook     string
	demoLink string
}

func inputFor(lead *model.BusinessLead) draftInput {
	in := draftInput{
		business: lead.BusinessName,
		owner:    lead.OwnerName,
		hook:     lead.PersonalHook,
		demoLink: lead.DemoDesktopScreenshotURL,
	}
	if in.owner == "" {
		in.owner = "there"
	}
	if in.hook == "" {
		in.hook = fmt.Sprintf("I noticed %s has a strong local presence", in.business)
	}
	if in.demoLink == "" {
		in.demoLink = "[demo-link]"
	}
	return in
}

// Compose returns the standard drafts for lead.
func (c *Composer) Compose(lead *model.BusinessLead) model.OutreachMessages {
	in := inputFor(lead)
	return model.OutreachMessages{
		Email: c.email(in),
		DM:    dm(in),
		SMS:   sms(in),
	}
}

// ComposeAlternatives returns formal and casual rewrites of the standard
// drafts.
func (c *Composer) ComposeAlternatives(lead *model.BusinessLead) Alternatives {
	base := c.Compose(lead)
	return Alternatives{
		Formal: rewrite(base, formalTone),
		Casual: rewrite(base, casualTone),
	}
}

func (c *Composer) email(in draftInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: Quick idea for %s's website (30s demo)\n\n", in.business)
	fmt.Fprintf(&b, "Hi %s,\n\n", in.owner)
	fmt.Fprintf(&b, "%s — love it. I made a quick 1-page website mockup for %s so you can see how a modern site could bring more walk-ins and reservations.\n\n", in.hook, in.business)
	fmt.Fprintf(&b, "Here's a 20s demo: %s\n\n", in.demoLink)
	b.WriteString("If you like what you see, I'll set it live and keep it simple — no monthly headaches, just customers. Want me to send a version with your logo and opening hours?\n\n")
	fmt.Fprintf(&b, "— %s", c.sender)
	return b.String()
}

func dm(in draftInput) string {
	return fmt.Sprintf("Hey %s — %s. Made a short website demo for %s (30s). Link: %s. If you want, I can swap in your logo & menu and get it live so customers find you. Interested?",
		in.owner, strings.ToLower(in.hook), in.business, in.demoLink)
}

func sms(in draftInput) string {
	return fmt.Sprintf("Hey %s, quick site demo for %s: %s — I can swap your menu/logo & publish it. Want that?",
		in.owner, in.business, in.demoLink)
}

var (
	formalTone = strings.NewReplacer(
		"Hey ", "Hello ",
		" — ", ". ",
		"love it", "appreciate it",
		"Want that?", "Would you be interested?",
	)
	casualTone = strings.NewReplacer(
		"Hello ", "Hey ",
		"appreciate it", "love it",
		"Would you be interested?", "Want that?",
	)
)

func rewrite(m model.OutreachMessages, r *strings.Replacer) model.OutreachMessages {
	return model.OutreachMessages{
		Email: r.Replace(m.Email),
		DM:    r.Replace(m.DM),
		SMS:   r.Replace(m.SMS),
	}
}
