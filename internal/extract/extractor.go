// Package extract turns raw fetched documents into structured content items
// using source-specific selector profiles with ordered fallback strategies.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/rxacademy/harvest/internal/models"
	"github.com/rxacademy/harvest/internal/normalize"
)

// ErrContentTooShort is returned when extracted content falls below the
// minimum-viability threshold. This is a hard gate: the item is rejected,
// not persisted. Extraction errors must not silently store garbage.
var ErrContentTooShort = errors.New("extracted content below minimum length")

// SecondaryFetcher pulls the bytes of a richer document linked from the
// primary page (e.g. a guideline PDF).
type SecondaryFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Extractor extracts structured content items from raw HTML for one source.
type Extractor struct {
	profile   Profile
	minLength int
	secondary SecondaryFetcher
	converter *md.Converter
	logger    arbor.ILogger
}

// NewExtractor creates an extractor for the given profile. secondary may be
// nil, in which case linked PDFs are not pulled.
func NewExtractor(profile Profile, minLength int, secondary SecondaryFetcher, logger arbor.ILogger) *Extractor {
	return &Extractor{
		profile:   profile,
		minLength: minLength,
		secondary: secondary,
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

// Extract parses the raw HTML and returns a structured content item, or
// ErrContentTooShort when the result does not clear the viability gate.
// The returned item carries cleaned plain text; hashing and ID derivation
// are the scraper's concern.
func (e *Extractor) Extract(ctx context.Context, rawHTML, sourceURL string) (*models.ContentItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := e.extractTitle(doc, sourceURL)
	container := e.findContentContainer(doc)

	var body string
	var markdown string
	if container != nil {
		cleaned := cloneWithoutBoilerplate(container)
		body = cleaned.Text()
		markdown = e.converter.Convert(cleaned)
	} else {
		// Last-resort strategy: concatenate all paragraph-level text.
		var paragraphs []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
		body = strings.Join(paragraphs, "\n\n")
		markdown = body
	}

	if e.profile.FetchPDFLinks && e.secondary != nil {
		if pdfText := e.fetchLinkedPDF(ctx, doc, sourceURL); pdfText != "" {
			body = body + "\n\n" + pdfText
		}
	}

	content := normalize.Clean(body)
	// Threshold is in characters, not bytes; multi-byte text must not
	// over-count.
	if length := utf8.RuneCountInString(content); length < e.minLength {
		return nil, fmt.Errorf("%w: %d chars, need %d (url: %s)",
			ErrContentTooShort, length, e.minLength, sourceURL)
	}

	imageCount := doc.Find("img").Length()
	metadata := map[string]interface{}{
		"word_count":  len(strings.Fields(content)),
		"image_count": imageCount,
		"paginated":   doc.Find("nav.pagination, ul.pagination").Length() > 0,
	}

	return &models.ContentItem{
		SourceType:      e.profile.Source,
		Title:           title,
		Content:         content,
		ContentMarkdown: strings.TrimSpace(markdown),
		URL:             sourceURL,
		Category:        e.profile.Category,
		Priority:        e.profile.Priority,
		TherapeuticArea: ClassifyTherapeuticArea(sourceURL, content),
		PracticeArea:    ClassifyPracticeArea(sourceURL, content),
		Metadata:        metadata,
		LastUpdated:     time.Now(),
	}, nil
}

// extractTitle falls through the ordered title strategies: profile selectors,
// the page title tag, then a title derived from the URL slug.
func (e *Extractor) extractTitle(doc *goquery.Document, sourceURL string) string {
	for _, selector := range e.profile.TitleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return titleFromSlug(sourceURL)
}

// findContentContainer falls through the ordered content strategies, then the
// generic main-content selectors. A nil return means no structured container
// matched.
func (e *Extractor) findContentContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range e.profile.ContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			return sel
		}
	}
	sel := doc.Find("main, article, [role=main]").First()
	if sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
		return sel
	}
	return nil
}

// fetchLinkedPDF pulls the first PDF linked from the page and returns its
// text. Failure to retrieve or parse the secondary document never fails the
// overall extraction.
func (e *Extractor) fetchLinkedPDF(ctx context.Context, doc *goquery.Document, sourceURL string) string {
	href, ok := doc.Find(`a[href$=".pdf"]`).First().Attr("href")
	if !ok {
		return ""
	}

	pdfURL := resolveURL(sourceURL, href)
	data, err := e.secondary.FetchBytes(ctx, pdfURL)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", pdfURL).Msg("Failed to fetch linked PDF, keeping primary text")
		return ""
	}

	text, err := PDFText(data)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", pdfURL).Msg("Failed to extract linked PDF text, keeping primary text")
		return ""
	}

	e.logger.Debug().Str("url", pdfURL).Int("text_len", len(text)).Msg("Appended linked PDF text")
	return text
}

// cloneWithoutBoilerplate strips script/style and page chrome from a copy of
// the selection so the original document is left intact.
func cloneWithoutBoilerplate(sel *goquery.Selection) *goquery.Selection {
	clone := sel.Clone()
	clone.Find("script, style, noscript").Remove()
	clone.Find("nav, header, footer, aside").Remove()
	return clone
}

func titleFromSlug(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return sourceURL
	}
	slug := strings.TrimSuffix(u.Path, "/")
	if idx := strings.LastIndex(slug, "/"); idx >= 0 {
		slug = slug[idx+1:]
	}
	if idx := strings.LastIndex(slug, "."); idx > 0 {
		slug = slug[:idx]
	}
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)

	words := strings.Fields(slug)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	if len(words) == 0 {
		return u.Host
	}
	return strings.Join(words, " ")
}

func resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	hrefURL, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(hrefURL).String()
}
