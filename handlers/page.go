package handlers

import (
	"log"

	"tim_report_app_go/middleware"
	"tim_report_app_go/models"
	"tim_report_app_go/services"
	"tim_report_app_go/templates/report"

	"github.com/labstack/echo/v4"
)

var fieldLabels = map[string]string{
	services.FieldEmitterName:         "Émetteur",
	services.FieldEmitterAddress:      "Adresse émetteur",
	services.FieldEmitterContact:      "Contact émetteur (texte libre)",
	services.FieldEmitterContactName:  "Nom du contact émetteur",
	services.FieldEmitterContactPhone: "Téléphone émetteur",
	services.FieldEmitterContactMail:  "Email émetteur",
	services.FieldClientName:          "Client",
	services.FieldClientAddress:       "Adresse client",
	services.FieldClientContact:       "Contact client (texte libre)",
	services.FieldClientContactName:   "Nom du contact client",
	services.FieldClientContactPhone:  "Téléphone client",
	services.FieldClientContactMail:   "Email client",
	services.FieldClientNumber:        "N° client",
	services.FieldDate:                "Date",
	services.FieldStartDate:           "Début",
	services.FieldEndDate:             "Fin",
	services.FieldReference:           "Référence",
	services.FieldMotif:               "Motif d'intervention",
	services.FieldTodo:                "Travaux à réaliser (un par ligne)",
}

var multilineFields = map[string]bool{
	services.FieldEmitterAddress: true,
	services.FieldClientAddress:  true,
	services.FieldTodo:           true,
}

// ComposerPageHandler renders the composer form with its preview column
func ComposerPageHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := getApp(c)
	form := app.Workspace.Form()

	hidden, err := app.Workspace.PreviewHidden(ctx)
	if err != nil {
		log.Printf("[WARNING] Could not read preview preference: %v", err)
	}

	view := report.ComposerView{
		Sections: make(map[string][]report.SectionInputView),
		SectionTitles: map[string]string{
			models.SectionRealised: services.TitleRealised,
			models.SectionProblems: services.TitleProblems,
		},
		SectionOrder:  services.SectionKinds,
		PreviewHidden: hidden,
		PDFEnabled:    app.Printer != nil,
		Nonce:         middleware.GetNonce(ctx),
	}

	for _, key := range services.ScalarFields {
		view.Fields = append(view.Fields, report.FieldView{
			Key:       key,
			Label:     fieldLabels[key],
			Value:     form.Fields[key],
			Multiline: multilineFields[key],
		})
	}
	for _, kind := range services.SectionKinds {
		for i, s := range form.Sections[kind] {
			view.Sections[kind] = append(view.Sections[kind], report.SectionInputView{
				Kind: kind, Index: i, Topic: s.Topic, Items: s.Items,
			})
		}
	}
	for i, r := range form.Rows {
		view.Rows = append(view.Rows, report.RowInputView{Index: i, Field: r.Field, Value: r.Value, Remark: r.Remark})
	}
	for _, img := range form.Images {
		view.Images = append(view.Images, report.ImageInputView{
			ID: img.ID, Src: img.Src, Caption: img.Caption, Pending: img.Pending,
		})
	}

	return render(c, report.ComposerPage(view))
}
