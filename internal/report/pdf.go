// Package report renders a computed investment summary as a PDF document.
package report

import (
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/strady/imo-backend/internal/finance"
)

// FileName is the suggested download name for generated summaries.
const FileName = "Strady-imo-Summary.pdf"

// All amounts are formatted for one fixed locale/currency pair: Belgian
// Dutch, euros.
var printer = message.NewPrinter(language.MustParse("nl-BE"))

type line struct {
	label  string
	amount decimal.Decimal
}

type section struct {
	title string
	lines []line
}

// Render writes the summary as an A4 PDF to out. The three sections appear in
// fixed order with bold headings; amounts are currency-formatted here and
// nowhere else.
func Render(out io.Writer, in finance.InvestmentInput, s finance.Summary) error {
	sections := []section{
		{"Acquisition & Renovation", []line{
			{"Property price", in.PropertyPrice},
			{"Registration tax", s.RegistrationTax},
			{"Notary fees", s.NotaryFees},
			{"Renovation cost", s.RenovationCost},
			{"Total project cost", s.TotalProjectCost},
		}},
		{"Financing Overview", []line{
			{"Personal contribution", in.PersonalContribution},
			{"Initial cash outlay", s.InitialCashOutlay},
		}},
		{"Rental Performance", []line{
			{"Gross annual income", s.GrossAnnualIncome},
			{"Effective gross income", s.EffectiveGrossIncome},
			{"Total annual expenses", s.TotalAnnualExpenses},
			{"Net operating income", s.NetOperatingIncome},
		}},
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Strady Imo Investment Summary", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Investment Summary", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, sec := range sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr(sec.title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, l := range sec.lines {
			pdf.CellFormat(110, 7, tr(l.label), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, tr(formatEUR(l.amount)), "", 1, "R", false, 0, "")
		}
		pdf.Ln(5)
	}

	return pdf.Output(out)
}

// RenderToFile writes the summary PDF to a file at the given path.
func RenderToFile(path string, in finance.InvestmentInput, s finance.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return Render(f, in, s)
}

// formatEUR renders an amount as nl-BE euros, e.g. "€ 343.200,00".
func formatEUR(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprintf("€ %v",
		number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
