package html

import (
	"embed"
	"html/template"
	"io"

	"github.com/bjarke-xyz/apptrack/internal/app"
	"github.com/bjarke-xyz/apptrack/internal/domain"
)

//go:embed pages/*.html
var files embed.FS

var popupTemplate = parse("pages/popup.html")

type PopupParams struct {
	Title    string
	State    app.State
	Records  []domain.Application
	Query    string
	Statuses []domain.Status
}

func PopupPage(w io.Writer, p PopupParams) error {
	return popupTemplate.Execute(w, p)
}

func parse(file string) *template.Template {
	return template.Must(
		template.New("layout.html").ParseFS(files, "pages/layout.html", file))
}
