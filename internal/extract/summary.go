package extract

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/starford/perthro/internal/models"
)

// RenderSummary writes a tabular overview of the extracted files.
func RenderSummary(w io.Writer, files []models.ExtractedFile) error {
	tw := tabwriter.NewWriter(w, 2, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tTYPE\tSIZE (BYTES)")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", f.Name, f.Type, f.SizeBytes)
	}
	return tw.Flush()
}
