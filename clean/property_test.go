package clean

import (
	"strings"
	"testing"

	"github.com/OmarSalvatierra99/cleandoc/internal/testutil"
	"pgregory.net/rapid"
)

var paragraphPool = []string{
	"Hello",
	"Informe de resultados",
	"Cuenta pública 2023",
	"Revisó: B",
	"",
	org,
	"órgano de fiscalización superior",
	"Informe del " + org + " de Tlaxcala",
	dir,
	dir + " - Anexo",
	org + " " + dir,
	"Oficio-" + org + "-12",
	"Elaboró: A",
	"E l a b o r ó",
}

// expectedBody models the body after cleaning: marked paragraphs are
// redacted or dropped, then everything from the first sentinel on is cut.
func expectedBody(p *Patterns, in []string) []string {
	out := []string{}
	for _, s := range in {
		if p.Matches(s) {
			s = p.Redact(s)
			if s == "" {
				continue
			}
		}
		out = append(out, s)
	}
	for i, s := range out {
		if p.IsSentinel(s) {
			return out[:i]
		}
	}
	return out
}

func drawBody(t *rapid.T) []string {
	return rapid.SliceOfN(rapid.SampledFrom(paragraphPool), 0, 12).Draw(t, "body")
}

func buildBody(paras []string) string {
	var sb strings.Builder
	for _, s := range paras {
		sb.WriteString(testutil.P(s))
	}
	return sb.String()
}

func TestClean_BodyMatchesModel(t *testing.T) {
	c := newTestCleaner()
	rapid.Check(t, func(t *rapid.T) {
		paras := drawBody(t)
		data := testutil.BuildDOCX(t, testutil.DOCX{Body: buildBody(paras)})

		res := mustClean(t, c, data)

		want := expectedBody(c.Patterns(), paras)
		got := bodyTexts(t, res.Data)
		if strings.Join(got, "|") != strings.Join(want, "|") || len(got) != len(want) {
			t.Fatalf("body = %q, want %q", got, want)
		}
		if res.Stats.ParagraphsRemoved != len(paras)-len(want) {
			t.Fatalf("ParagraphsRemoved = %d, want %d", res.Stats.ParagraphsRemoved, len(paras)-len(want))
		}
	})
}

func TestClean_Idempotent(t *testing.T) {
	c := newTestCleaner()
	rapid.Check(t, func(t *rapid.T) {
		paras := drawBody(t)
		boxed := rapid.SliceOfN(rapid.SampledFrom(paragraphPool), 0, 4).Draw(t, "textbox")

		var headers []string
		if rapid.Bool().Draw(t, "header image") {
			headers = append(headers, testutil.Drawing("logo")+testutil.Table(testutil.Drawing("seal"))+testutil.Table(testutil.Pict("vml seal")))
		}
		body := buildBody(paras)
		if len(boxed) > 0 {
			var inner []string
			for _, s := range boxed {
				inner = append(inner, testutil.P(s))
			}
			body = testutil.PictTextBox(inner...) + body
		}
		data := testutil.BuildDOCX(t, testutil.DOCX{Body: body, Headers: headers})

		first := mustClean(t, c, data)
		second := mustClean(t, c, first.Data)

		if second.Stats.Changed() {
			t.Fatalf("second clean changed the document: %+v", second.Stats)
		}
		a, b := bodyTexts(t, first.Data), bodyTexts(t, second.Data)
		if strings.Join(a, "|") != strings.Join(b, "|") {
			t.Fatalf("body changed on second clean: %q -> %q", a, b)
		}
	})
}
