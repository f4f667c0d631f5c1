package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// DiscountEmail is the data behind a standard-tier (3/6/9%) email.
type DiscountEmail struct {
	To            string
	Name          string
	Rate          int
	Level         int
	OriginalPrice float64
	PreviousPrice float64
	FinalPrice    float64
	SavedNow      float64
}

// BonusEmail is the data behind the one-time +3% email.
type BonusEmail struct {
	To            string
	Name          string
	PreviousPrice float64
	BonusAmount   float64
	FinalPrice    float64
}

var funcs = map[string]any{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

var (
	discountHTML = htmltemplate.Must(htmltemplate.New("discount").Funcs(funcs).Parse(`<p>Hi {{.Name}},</p>
<p>Thank you for recommending us. Your referral discount is now <strong>{{.Rate}}%</strong> (level {{.Level}}).</p>
<table>
<tr><td>Original price</td><td>{{money .OriginalPrice}}</td></tr>
<tr><td>Previous price</td><td>{{money .PreviousPrice}}</td></tr>
<tr><td>Your new price</td><td><strong>{{money .FinalPrice}}</strong></td></tr>
</table>
<p>You saved {{money .SavedNow}} this time.</p>`))

	discountText = texttemplate.Must(texttemplate.New("discount").Funcs(funcs).Parse(`Hi {{.Name}},

Thank you for recommending us. Your referral discount is now {{.Rate}}% (level {{.Level}}).

Original price: {{money .OriginalPrice}}
Previous price: {{money .PreviousPrice}}
Your new price: {{money .FinalPrice}}

You saved {{money .SavedNow}} this time.
`))

	bonusHTML = htmltemplate.Must(htmltemplate.New("bonus").Funcs(funcs).Parse(`<p>Hi {{.Name}},</p>
<p>You already have our maximum referral discount, so here is an extra <strong>3%</strong> on top.</p>
<table>
<tr><td>Price before bonus</td><td>{{money .PreviousPrice}}</td></tr>
<tr><td>Bonus</td><td>-{{money .BonusAmount}}</td></tr>
<tr><td>Your new price</td><td><strong>{{money .FinalPrice}}</strong></td></tr>
</table>`))

	bonusText = texttemplate.Must(texttemplate.New("bonus").Funcs(funcs).Parse(`Hi {{.Name}},

You already have our maximum referral discount, so here is an extra 3% on top.

Price before bonus: {{money .PreviousPrice}}
Bonus: -{{money .BonusAmount}}
Your new price: {{money .FinalPrice}}
`))
)

func RenderDiscount(d DiscountEmail) (Message, error) {
	var h, t bytes.Buffer
	if err := discountHTML.Execute(&h, d); err != nil {
		return Message{}, fmt.Errorf("render discount html: %w", err)
	}
	if err := discountText.Execute(&t, d); err != nil {
		return Message{}, fmt.Errorf("render discount text: %w", err)
	}
	return Message{
		To:      d.To,
		Subject: fmt.Sprintf("Your referral discount is now %d%%", d.Rate),
		HTML:    h.String(),
		Text:    t.String(),
	}, nil
}

func RenderBonus(b BonusEmail) (Message, error) {
	var h, t bytes.Buffer
	if err := bonusHTML.Execute(&h, b); err != nil {
		return Message{}, fmt.Errorf("render bonus html: %w", err)
	}
	if err := bonusText.Execute(&t, b); err != nil {
		return Message{}, fmt.Errorf("render bonus text: %w", err)
	}
	return Message{
		To:      b.To,
		Subject: "An extra 3% referral bonus for you",
		HTML:    h.String(),
		Text:    t.String(),
	}, nil
}
