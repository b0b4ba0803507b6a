// Package export writes decoded series to files for analysis outside the
// viewer. Two formats are supported: TSV for spreadsheet and plotting
// tools, and parquet for columnar analysis pipelines.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/heliodyne/pulseview/iox"
	"github.com/heliodyne/pulseview/types"
)

// Row is one exported sample in long form: every sample carries its
// selector and channel so mixed-channel files remain self-describing.
type Row struct {
	Selector string  `parquet:"selector,dict"`
	Channel  int32   `parquet:"channel"`
	Coord    float64 `parquet:"coord"`
	Value    float64 `parquet:"value"`
}

// rows flattens the series into export rows, channels in stored order.
func rows(series *types.DecodedSeries) []Row {
	out := make([]Row, 0, series.TotalSamples())
	for _, ch := range series.Channels {
		for _, s := range ch.Samples {
			out = append(out, Row{
				Selector: series.Selector,
				Channel:  int32(ch.Meta.ChannelID),
				Coord:    s.Coord,
				Value:    s.Value,
			})
		}
	}
	return out
}

// WriteTSV writes the series as tab-separated values with a header row.
func WriteTSV(w io.Writer, series *types.DecodedSeries) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("selector\tchannel\tcoord\tvalue\n"); err != nil {
		return fmt.Errorf("export: write tsv header: %w", err)
	}
	for _, r := range rows(series) {
		_, err := fmt.Fprintf(bw, "%s\t%d\t%s\t%s\n",
			r.Selector,
			r.Channel,
			strconv.FormatFloat(r.Coord, 'g', -1, 64),
			strconv.FormatFloat(r.Value, 'g', -1, 64),
		)
		if err != nil {
			return fmt.Errorf("export: write tsv row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: flush tsv: %w", err)
	}
	return nil
}

// WriteParquet writes the series as a single parquet row group.
func WriteParquet(w io.Writer, series *types.DecodedSeries) error {
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows(series)); err != nil {
		_ = pw.Close()
		return fmt.Errorf("export: write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("export: close parquet writer: %w", err)
	}
	return nil
}

// ToFile writes the series to path, choosing the format by extension:
// .parquet for parquet, anything else for TSV.
func ToFile(path string, series *types.DecodedSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer iox.DiscardClose(f)

	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		err = WriteParquet(f, series)
	} else {
		err = WriteTSV(f, series)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
