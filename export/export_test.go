package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/heliodyne/pulseview/types"
)

func testSeries() *types.DecodedSeries {
	return &types.DecodedSeries{
		Selector: "2024_11/run_7",
		Kind:     types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: types.RecordHistogram},
		Channels: []types.ChannelSeries{
			{
				Meta:    types.SeriesMeta{ChannelID: 0, SampleCount: 2},
				Samples: []types.Sample{{Coord: 100, Value: 12}, {Coord: 200, Value: 7}},
			},
			{
				Meta:    types.SeriesMeta{ChannelID: 3, SampleCount: 1},
				Samples: []types.Sample{{Coord: 100, Value: 4.5}},
			},
		},
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, testSeries()); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if lines[0] != "selector\tchannel\tcoord\tvalue" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2024_11/run_7\t0\t100\t12" {
		t.Fatalf("first row = %q", lines[1])
	}
	if lines[3] != "2024_11/run_7\t3\t100\t4.5" {
		t.Fatalf("last row = %q", lines[3])
	}
}

func TestParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, testSeries()); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	rows, err := parquet.Read[Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Selector != "2024_11/run_7" || rows[0].Channel != 0 || rows[0].Coord != 100 || rows[0].Value != 12 {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[2].Channel != 3 || rows[2].Value != 4.5 {
		t.Fatalf("last row = %+v", rows[2])
	}
}

func TestToFileChoosesFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	series := testSeries()

	tsvPath := filepath.Join(dir, "out.tsv")
	if err := ToFile(tsvPath, series); err != nil {
		t.Fatalf("ToFile tsv: %v", err)
	}
	data, err := os.ReadFile(tsvPath)
	if err != nil {
		t.Fatalf("read tsv: %v", err)
	}
	if !strings.HasPrefix(string(data), "selector\tchannel\tcoord\tvalue\n") {
		t.Fatalf("tsv file does not start with header: %q", string(data[:40]))
	}

	pqPath := filepath.Join(dir, "out.parquet")
	if err := ToFile(pqPath, series); err != nil {
		t.Fatalf("ToFile parquet: %v", err)
	}
	info, err := os.Stat(pqPath)
	if err != nil {
		t.Fatalf("stat parquet: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("parquet file is empty")
	}
}
