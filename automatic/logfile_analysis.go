package automatic

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/domino14/mnkgame/stats"
)

// ReadResultsFile parses a results CSV written by WriteResultsFile.
func ReadResultsFile(path string) ([]ConfigResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = len(resultsHeader)

	var out []ConfigResult
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if record[0] == resultsHeader[0] {
			// header line
			continue
		}
		var res ConfigResult
		ints := []*int{&res.Config.M, &res.Config.N, &res.Config.K}
		for i, dst := range ints {
			if *dst, err = strconv.Atoi(record[i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", len(out)+2, err)
			}
		}
		if res.AvgTime, err = strconv.ParseFloat(record[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+2, err)
		}
		if res.AvgStates, err = strconv.ParseFloat(record[4], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+2, err)
		}
		res.Index = len(out)
		out = append(out, res)
	}
	return out, nil
}

// AnalyzeResultsFile summarizes the given results CSV file.
func AnalyzeResultsFile(path string) (string, error) {
	results, err := ReadResultsFile(path)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No configurations found\n", nil
	}
	var times, states stats.Statistic
	for _, r := range results {
		times.Push(r.AvgTime)
		states.Push(r.AvgStates)
	}
	fastest := slices.MinFunc(results, func(a, b ConfigResult) int {
		return cmp.Compare(a.AvgTime, b.AvgTime)
	})
	slowest := slices.MaxFunc(results, func(a, b ConfigResult) int {
		return cmp.Compare(a.AvgTime, b.AvgTime)
	})
	most := slices.MaxFunc(results, func(a, b ConfigResult) int {
		return cmp.Compare(a.AvgStates, b.AvgStates)
	})

	out := fmt.Sprintf("Configurations: %d\n", len(results))
	out += fmt.Sprintf("Fastest: %v (%.6fs per move)\n", fastest.Config, fastest.AvgTime)
	out += fmt.Sprintf("Slowest: %v (%.6fs per move)\n", slowest.Config, slowest.AvgTime)
	out += fmt.Sprintf("Most states visited: %v (%.1f)\n", most.Config, most.AvgStates)
	out += fmt.Sprintf("Mean time per move: %.6fs  Stdev: %.6f\n", times.Mean(), times.Stdev())
	out += fmt.Sprintf("Mean states visited: %.1f  Stdev: %.1f\n", states.Mean(), states.Stdev())
	return out, nil
}
