package temporal

import (
	"bike-data-pipeline/pkg/utils"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// dayNames in partition file order, Monday first.
var dayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// subset is one temporal slice of the cleaned file.
type subset struct {
	name  string
	match func(t time.Time) bool
}

// subsets returns every partition in output order. The slices overlap:
// a Saturday night trip lands in night, weekend and saturday.
func subsets() []subset {
	subs := []subset{
		{"night", func(t time.Time) bool { h := t.Hour(); return h >= 20 || h < 6 }},
		{"day", func(t time.Time) bool { h := t.Hour(); return h >= 6 && h < 20 }},
		{"weekday", func(t time.Time) bool { return dayIndex(t) < 5 }},
		{"weekend", func(t time.Time) bool { return dayIndex(t) >= 5 }},
	}
	for i, name := range dayNames {
		day := i
		subs = append(subs, subset{name, func(t time.Time) bool { return dayIndex(t) == day }})
	}
	return subs
}

// dayIndex numbers days Monday=0 through Sunday=6.
func dayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Partition splits a cleaned trip file into temporal subsets by departure
// time: night (20:00 to 06:00) and day (06:00 to 20:00) by hour, weekday and
// weekend plus one file per weekday by day. Every output keeps the
// input's exact column set; rows whose departure cell does not parse are
// left out of every subset. Returns the record count per subset.
func Partition(inputPath, outDir, departureColumn string) (map[string]int, error) {
	header, rows, err := utils.ReadCSVFile(inputPath)
	if err != nil {
		return nil, err
	}

	departureIdx := -1
	for i, h := range header {
		if h == departureColumn {
			departureIdx = i
			break
		}
	}
	if departureIdx == -1 {
		return nil, fmt.Errorf("departure column %q not found in %s", departureColumn, inputPath)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create partition directory: %w", err)
	}

	// Parse each departure once, not once per subset.
	times := make([]*time.Time, len(rows))
	skipped := 0
	for i, row := range rows {
		if departureIdx < len(row) {
			times[i] = utils.ParseTimestamp(row[departureIdx])
		}
		if times[i] == nil {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Printf("🔍 Partition: %d rows skipped (unparseable departure)\n", skipped)
	}

	counts := make(map[string]int)
	for _, sub := range subsets() {
		var matched [][]string
		for i, row := range rows {
			if times[i] != nil && sub.match(*times[i]) {
				matched = append(matched, row)
			}
		}

		outPath := filepath.Join(outDir, "clean_"+sub.name+".csv")
		if err := utils.WriteCSVFile(outPath, header, matched); err != nil {
			return nil, fmt.Errorf("failed to write partition %s: %w", sub.name, err)
		}
		counts[sub.name] = len(matched)
		fmt.Printf("📄 Partition %s: %d records written to %s\n", sub.name, len(matched), outPath)
	}
	return counts, nil
}

// FileName returns the partition file name for a subset.
func FileName(name string) string {
	return "clean_" + name + ".csv"
}

// Names lists every partition in output order.
func Names() []string {
	names := make([]string, 0, len(subsets()))
	for _, sub := range subsets() {
		names = append(names, sub.name)
	}
	return names
}
