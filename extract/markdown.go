package extract

import (
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var (
	mdOnce      sync.Once
	mdConverter *converter.Converter
	mdPolicy    *bluemonday.Policy
)

func mdInit() {
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	mdPolicy = bluemonday.UGCPolicy()
}

// toMarkdown sanitizes an HTML fragment and converts it to markdown.
// Clipboard URLs point at arbitrary pages, so scripts, event handlers, and
// styling are stripped before conversion. Returns "" on conversion failure;
// the caller still has the plain text.
func toMarkdown(htmlFragment string) string {
	mdOnce.Do(mdInit)

	clean := mdPolicy.Sanitize(htmlFragment)
	md, err := mdConverter.ConvertString(clean)
	if err != nil {
		return ""
	}
	return md
}
