package extract

import (
	"testing"

	"paperchat/internal/models"
	"paperchat/internal/query"

	"github.com/stretchr/testify/require"
)

func unitsOfKind(units []models.ContentUnit, kind models.ContentKind) []models.ContentUnit {
	out := []models.ContentUnit{}
	for _, u := range units {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

func TestStructureSegmentsPaper(t *testing.T) {
	pages := []PageText{
		{Page: 1, Text: "Deep Residual Learning for Image Recognition\n" +
			"Kaiming He, Xiangyu Zhang\n" +
			"Abstract\n" +
			"We present a residual learning framework to ease training of deep networks.\n" +
			"\n" +
			"1 Introduction\n" +
			"Deep networks are hard to train. Residual connections help.\n" +
			"Figure 1: Residual block diagram\n"},
		{Page: 2, Text: "References\n" +
			"[1] A. Author. A great paper about networks. 2015.\n" +
			"[2] B. Writer. Another relevant paper. 2016.\n"},
	}

	units, meta := Structure("paper1", pages)

	require.Equal(t, "Deep Residual Learning for Image Recognition", meta.Title)
	require.Equal(t, "Kaiming He, Xiangyu Zhang", meta.Authors)

	authors := unitsOfKind(units, models.KindAuthor)
	require.Len(t, authors, 1)

	sections := unitsOfKind(units, models.KindSection)
	require.Len(t, sections, 2)
	require.Equal(t, query.BucketAbstract, sections[0].StructuralTag)
	require.Equal(t, query.BucketIntroduction, sections[1].StructuralTag)
	require.Equal(t, "section 1", sections[1].Locator)

	paras := unitsOfKind(units, models.KindParagraph)
	require.Len(t, paras, 2)
	require.Equal(t, query.BucketAbstract, paras[0].StructuralTag)
	require.Equal(t, "page 1", paras[0].Locator)
	require.Equal(t, query.BucketIntroduction, paras[1].StructuralTag)

	figures := unitsOfKind(units, models.KindFigure)
	require.Len(t, figures, 1)
	require.Equal(t, "figure 1", figures[0].Locator)

	refs := unitsOfKind(units, models.KindReference)
	require.Len(t, refs, 2)
	require.Equal(t, "reference 1", refs[0].Locator)
	require.Equal(t, "reference 2", refs[1].Locator)
	require.Equal(t, query.BucketReferences, refs[0].StructuralTag)

	for i := range units {
		require.Equal(t, i, units[i].Position)
		require.NotEmpty(t, units[i].UnitID)
		require.Equal(t, "paper1", units[i].PaperID)
	}
}

func TestStructureTablesAndEquations(t *testing.T) {
	pages := []PageText{
		{Page: 1, Text: "Some Paper Title\n" +
			"An Author\n" +
			"2 Methods\n" +
			"The loss is defined below.\n" +
			"L = a + b (3)\n" +
			"Table 2: Results on ImageNet\n"},
	}

	units, _ := Structure("paper1", pages)

	eqs := unitsOfKind(units, models.KindEquation)
	require.Len(t, eqs, 1)
	require.Equal(t, "equation 3", eqs[0].Locator)
	require.Equal(t, "L = a + b", eqs[0].Text)

	tables := unitsOfKind(units, models.KindTable)
	require.Len(t, tables, 1)
	require.Equal(t, "table 2", tables[0].Locator)

	sections := unitsOfKind(units, models.KindSection)
	require.Len(t, sections, 1)
	require.Equal(t, query.BucketMethods, sections[0].StructuralTag)
	require.Equal(t, "section 2", sections[0].Locator)
}

func TestStructureMultilineReferenceEntries(t *testing.T) {
	pages := []PageText{
		{Page: 1, Text: "Title Line\n" +
			"Author Line\n" +
			"References\n" +
			"[1] A. Author. A paper title that\n" +
			"spans two lines. 2020.\n"},
	}

	units, _ := Structure("paper1", pages)
	refs := unitsOfKind(units, models.KindReference)
	require.Len(t, refs, 1)
	require.Equal(t, "[1] A. Author. A paper title that spans two lines. 2020.", refs[0].Text)
}

func TestStructureEmptyPages(t *testing.T) {
	units, meta := Structure("paper1", nil)
	require.Empty(t, units)
	require.Empty(t, meta.Title)
}

func TestWellFormedReference(t *testing.T) {
	require.True(t, WellFormedReference("[1] A. Author. A great paper about networks. 2015."))
	require.False(t, WellFormedReference("[2] short"))
	require.False(t, WellFormedReference("[3] A long enough entry without any publication year at all"))
}
