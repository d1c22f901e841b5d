// Package report renders the official SGAD PDF documents.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"sgad-api/internal/scoring"

	"github.com/jung-kurt/gofpdf"
)

// Template is a report variant bound to the weight scheme it prints.
type Template struct {
	Name   string
	Title  string
	Scheme string
}

const (
	TemplateFichaAvaliacao    = "ficha_avaliacao"
	TemplateFichaSimplificada = "ficha_simplificada"
)

var ErrUnknownTemplate = errors.New("unknown report template")

// Templates returns the available report variants by name.
func Templates() map[string]Template {
	return map[string]Template{
		TemplateFichaAvaliacao: {
			Name:   TemplateFichaAvaliacao,
			Title:  "Ficha de Avaliação do Desempenho",
			Scheme: scoring.SchemeObjetivosEquipa,
		},
		TemplateFichaSimplificada: {
			Name:   TemplateFichaSimplificada,
			Title:  "Ficha de Avaliação do Desempenho (Objetivos e Competências)",
			Scheme: scoring.SchemeObjetivos,
		},
	}
}

func LookupTemplate(name string) (Template, error) {
	if name == "" {
		name = TemplateFichaAvaliacao
	}
	t, ok := Templates()[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return t, nil
}

var componentLabels = map[scoring.Component]string{
	scoring.ObjetivosIndividuais:     "Objetivos individuais",
	scoring.ObjetivosEquipa:          "Objetivos de equipa",
	scoring.CompetenciasTransversais: "Competências transversais",
	scoring.CompetenciasTecnicas:     "Competências técnicas",
}

// EvaluationSheet is the data printed on an individual evaluation sheet.
type EvaluationSheet struct {
	Institution   string
	CycleName     string
	CycleState    string
	EvaluatedName string
	EmployeeNo    string
	JobTitle      string
	OrgUnit       string
	EvaluatorName string
	Scores        scoring.SubScores
	Comments      string
	GeneratedAt   time.Time

	// Scheme, NAF and Grade as stored on the evaluation.
	RecordedScheme string
	RecordedNAF    *float64
	RecordedGrade  scoring.Grade
}

// recordedNote describes the stored result when the sheet is printed under
// a scheme other than the one the evaluation was scored with.
func recordedNote(scheme scoring.Scheme, sheet EvaluationSheet) string {
	if sheet.RecordedScheme == "" || sheet.RecordedScheme == scheme.Name {
		return ""
	}
	if sheet.RecordedNAF == nil {
		return fmt.Sprintf("Avaliação registada com a ponderação %s; NAF por apurar.", sheet.RecordedScheme)
	}
	return fmt.Sprintf("Avaliação registada com a ponderação %s: NAF %s, %s.",
		sheet.RecordedScheme, scoring.FormatForDisplay(*sheet.RecordedNAF), sheet.RecordedGrade)
}

// SummaryRow is one line of a cycle summary.
type SummaryRow struct {
	EvaluatedName string
	OrgUnit       string
	NAF           *float64
	Grade         scoring.Grade
}

type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDocument(title, institution string, generatedAt time.Time) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(institution, true)
	pdf.SetMargins(18, 18, 18)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Gerado em %s - página %d/{nb}",
			generatedAt.Format("02/01/2006 15:04"), pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, tr(institution), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, tr(title), "", "C", false)
	pdf.Ln(4)
	return &document{pdf: pdf, tr: tr}
}

func (d *document) field(label, value string) {
	if value == "" {
		value = "-"
	}
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(50, 7, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 7, d.tr(value), "", 1, "L", false, 0, "")
}

func (d *document) header(widths []float64, cols []string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetFillColor(225, 230, 240)
	for i, c := range cols {
		align := "C"
		if i == 0 {
			align = "L"
		}
		d.pdf.CellFormat(widths[i], 8, d.tr(c), "1", 0, align, true, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetFont("Helvetica", "", 10)
}

// RenderEvaluationSheet writes the sheet for one evaluation using the
// template's scheme. The NAF line is printed only when every weighted
// sub-score is present. A stored result under another scheme is printed
// below it.
func RenderEvaluationSheet(w io.Writer, tpl Template, scheme scoring.Scheme, sheet EvaluationSheet) error {
	doc := newDocument(tpl.Title, sheet.Institution, sheet.GeneratedAt)
	pdf := doc.pdf

	doc.field("Ciclo de avaliação", sheet.CycleName)
	doc.field("Estado do ciclo", sheet.CycleState)
	doc.field("Avaliado", sheet.EvaluatedName)
	doc.field("N.º mecanográfico", sheet.EmployeeNo)
	doc.field("Categoria", sheet.JobTitle)
	doc.field("Unidade orgânica", sheet.OrgUnit)
	doc.field("Avaliador", sheet.EvaluatorName)
	doc.field("Ponderação", scheme.Name)
	pdf.Ln(4)

	widths := []float64{70, 30, 30, 44}
	doc.header(widths, []string{"Parâmetro", "Pontuação", "Ponderação", "Resultado ponderado"})
	for _, c := range scheme.Components() {
		weight := scheme.Weight(c)
		score, weighted := "-", "-"
		if v, ok := sheet.Scores[c]; ok {
			score = scoring.FormatForDisplay(v)
			weighted = scoring.FormatForDisplay(v * weight / 100)
		}
		pdf.CellFormat(widths[0], 7, doc.tr(componentLabels[c]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, score, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%s%%", scoring.FormatForDisplay(weight)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, weighted, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	result, err := scoring.Evaluate(sheet.Scores, scheme)
	pdf.SetFont("Helvetica", "B", 12)
	if err != nil {
		pdf.CellFormat(0, 8, doc.tr("Nota de Avaliação Final: por apurar"), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 8, doc.tr(fmt.Sprintf("Nota de Avaliação Final (NAF): %s", scoring.FormatForDisplay(result.NAF))), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, doc.tr(fmt.Sprintf("Menção qualitativa: %s", result.Grade)), "", 1, "L", false, 0, "")
	}
	if note := recordedNote(scheme, sheet); note != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, doc.tr(note), "", "L", false)
	}

	if sheet.Comments != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, doc.tr("Fundamentação"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, doc.tr(sheet.Comments), "1", "L", false)
	}

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(85, 7, doc.tr("O Avaliador: ____________________"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, doc.tr("Tomei conhecimento: ____________________"), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// RenderCycleSummary writes the list of final grades for a cycle.
func RenderCycleSummary(w io.Writer, institution, cycleName string, generatedAt time.Time, rows []SummaryRow) error {
	doc := newDocument("Relatório de Resultados do Ciclo", institution, generatedAt)
	pdf := doc.pdf

	doc.field("Ciclo de avaliação", cycleName)
	doc.field("Total de avaliados", fmt.Sprintf("%d", len(rows)))
	pdf.Ln(4)

	widths := []float64{74, 40, 24, 36}
	doc.header(widths, []string{"Avaliado", "Unidade", "NAF", "Menção"})
	counts := make(map[scoring.Grade]int)
	for _, r := range rows {
		naf := "-"
		if r.NAF != nil {
			naf = scoring.FormatForDisplay(*r.NAF)
			counts[r.Grade]++
		}
		pdf.CellFormat(widths[0], 7, doc.tr(r.EvaluatedName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, doc.tr(r.OrgUnit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, naf, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, doc.tr(string(r.Grade)), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, doc.tr("Distribuição das menções"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, g := range scoring.Grades() {
		pdf.CellFormat(0, 6, doc.tr(fmt.Sprintf("%s: %d", g, counts[g])), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}
