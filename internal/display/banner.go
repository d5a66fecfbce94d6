package display

import (
	"fmt"
	"io"

	"github.com/backmassage/pixelbatch/internal/term"
)

const banner = `       _          _ _           _       _
 _ __ (_)_  _____| | |__   __ _| |_ ___| |__
| '_ \| \ \/ / _ \ | '_ \ / _` + "`" + ` | __/ __| '_ \
| |_) | |>  <  __/ | |_) | (_| | || (__| | | |
| .__/|_/_/\_\___|_|_.__/ \__,_|\__\___|_| |_|
|_|
`

// PrintBanner writes the ASCII art banner to w, in magenta when colors are
// enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
}
