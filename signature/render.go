package signature

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"image/color"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Branding is the fixed company part of every signature.
type Branding struct {
	Company string
	Website string
	// Accent is a CSS hex colour such as #0b5cad.
	Accent string
}

var DefaultBranding = Branding{
	Accent: "#0b5cad",
}

// Renderer produces signature markup. Every form value is inserted as
// escaped text, so no field can alter the layout.
type Renderer struct {
	branding Branding
	accent   color.RGBA
	tmpl     *template.Template
}

// NewRenderer fails on an accent that is not a #rrggbb colour, so a bad
// branding setting stops the server instead of every PNG request.
func NewRenderer(branding Branding) (*Renderer, error) {
	if branding.Accent == "" {
		branding.Accent = DefaultBranding.Accent
	}
	accent, err := parseHexColor(branding.Accent)
	if err != nil {
		return nil, err
	}
	branding.Accent = fmt.Sprintf("#%02x%02x%02x", accent.R, accent.G, accent.B)

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse signature templates: %w", err)
	}
	return &Renderer{branding: branding, accent: accent, tmpl: tmpl}, nil
}

type view struct {
	Name         string
	JobTitle     string
	Company      string
	Phone        string
	PhoneLink    string
	AddressLine  string
	Country      string
	Email        string
	Website      string
	WebsiteLabel string
	Accent       template.CSS
}

func (r *Renderer) view(f FormState) view {
	name := f.DisplayName()
	if name == "" {
		name = "Your Name"
	}
	phone := f.FormattedPhone()
	return view{
		Name:         name,
		JobTitle:     strings.TrimSpace(f.JobTitle),
		Company:      r.branding.Company,
		Phone:        phone,
		PhoneLink:    strings.ReplaceAll(phone, " ", ""),
		AddressLine:  f.AddressLine(),
		Country:      strings.TrimSpace(f.Country),
		Email:        strings.TrimSpace(f.Email),
		Website:      r.branding.Website,
		WebsiteLabel: strings.TrimPrefix(strings.TrimPrefix(r.branding.Website, "https://"), "http://"),
		Accent:       template.CSS(r.branding.Accent),
	}
}

// Preview renders the on-screen preview fragment.
func (r *Renderer) Preview(f FormState) (string, error) {
	return r.execute("preview", f)
}

// StandaloneHTML renders a complete HTML document for pasting into a mail client.
func (r *Renderer) StandaloneHTML(f FormState) (string, error) {
	return r.execute("document", f)
}

func (r *Renderer) execute(name string, f FormState) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, r.view(f)); err != nil {
		return "", fmt.Errorf("failed to render signature %s: %w", name, err)
	}
	return buf.String(), nil
}
