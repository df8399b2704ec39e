package prompt

import (
	"fmt"
	"strings"

	"paperchat/internal/models"
	"paperchat/internal/query"
)

// Assemble renders the ranked units, conversation history, and query-type
// instructions into the single prompt handed to the model. It is
// deterministic and never fails: an empty ranked list still produces a valid
// prompt with the paper metadata and a degraded instruction.
func Assemble(profile models.QueryProfile, ranked []models.RankedUnit, history []models.ChatTurn, meta models.PaperMetadata) string {
	strategy := query.Lookup(profile.PrimaryType)
	var b strings.Builder

	b.WriteString("Paper: ")
	if meta.Title != "" {
		b.WriteString(meta.Title)
	} else {
		b.WriteString(meta.Filename)
	}
	b.WriteString("\n")
	if meta.Authors != "" {
		b.WriteString("Authors: " + meta.Authors + "\n")
	}
	b.WriteString("\n")

	if len(ranked) == 0 {
		b.WriteString("No specific supporting content was found in the paper for this question. " +
			"Answer from the paper metadata above only, and state clearly that the paper's extracted content did not cover the question.\n\n")
	} else {
		writeGroupedUnits(&b, strategy, ranked)
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			switch turn.Role {
			case models.RoleAssistant:
				b.WriteString("Assistant: ")
			default:
				b.WriteString("User: ")
			}
			b.WriteString(turn.Text + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Instructions: " + strategy.Instructions + "\n")
	return b.String()
}

// writeGroupedUnits emits units grouped by bucket, buckets in the strategy's
// priority order, any stragglers after.
func writeGroupedUnits(b *strings.Builder, strategy query.Strategy, ranked []models.RankedUnit) {
	byBucket := map[string][]models.RankedUnit{}
	bucketSeen := make([]string, 0, len(ranked))
	for _, ru := range ranked {
		bucket := query.BucketFor(ru.Unit)
		if _, ok := byBucket[bucket]; !ok {
			bucketSeen = append(bucketSeen, bucket)
		}
		byBucket[bucket] = append(byBucket[bucket], ru)
	}

	order := make([]string, 0, len(bucketSeen))
	for _, bucket := range strategy.PriorityOrder {
		if _, ok := byBucket[bucket]; ok {
			order = append(order, bucket)
		}
	}
	for _, bucket := range bucketSeen {
		if !contains(order, bucket) {
			order = append(order, bucket)
		}
	}

	b.WriteString("Relevant content from the paper:\n\n")
	for _, bucket := range order {
		b.WriteString("### " + bucketHeading(bucket) + "\n")
		for _, ru := range byBucket[bucket] {
			b.WriteString(renderUnit(ru.Unit))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

// renderUnit is exhaustive over content kinds; each kind gets a
// type-appropriate label so the model knows what it is reading.
func renderUnit(u models.ContentUnit) string {
	label := u.Locator
	switch u.Kind {
	case models.KindSection, models.KindParagraph:
		if u.StructuralTag != "" {
			return fmt.Sprintf("[%s] %s", u.StructuralTag, u.Text)
		}
		return u.Text
	case models.KindFigure:
		if label == "" {
			label = "figure"
		}
		return fmt.Sprintf("[%s] Caption and extracted text: %s", label, u.Text)
	case models.KindTable:
		if label == "" {
			label = "table"
		}
		return fmt.Sprintf("[%s] Table content (header and rows):\n%s", label, u.Text)
	case models.KindEquation:
		if label == "" {
			label = "equation"
		}
		return fmt.Sprintf("[%s] LaTeX: %s", label, u.Text)
	case models.KindReference:
		return "Cited work: " + u.Text
	case models.KindAuthor:
		return "Author: " + u.Text
	}
	return u.Text
}

func bucketHeading(bucket string) string {
	switch bucket {
	case query.BucketFigures:
		return "Figures"
	case query.BucketTables:
		return "Tables"
	case query.BucketEquations:
		return "Equations"
	case query.BucketReferences:
		return "References"
	case query.BucketAuthors:
		return "Authors"
	}
	return strings.ToUpper(bucket[:1]) + bucket[1:]
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
