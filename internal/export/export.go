// Package export writes batch detection results to CSV files.
//
// Three files are produced per run: one row per backswing, one row per
// contact, and one row per paired backswing/contact with the downswing
// duration.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mgreen/swinglab/internal/pipeline"
)

// Output file names.
const (
	BackswingFile = "backswing_detections.csv"
	ContactFile   = "contact_detections.csv"
	DownswingFile = "downswing_durations.csv"
)

// VideoResult pairs a video's swing detection with its (optional) contact
// detection for export.
type VideoResult struct {
	Swings   *pipeline.Result
	Contacts *pipeline.ContactResult
}

// WriteCSVs writes the three detection CSVs to dir. The contact and
// downswing files are only written when at least one contact was detected.
func WriteCSVs(results []VideoResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	var bsRows, ctRows, dsRows [][]string
	for _, vr := range results {
		r := vr.Swings
		if r == nil {
			continue
		}
		for i, bf := range r.Peaks {
			bsRows = append(bsRows, []string{
				r.Video,
				strconv.Itoa(i + 1),
				strconv.Itoa(bf),
				round2(float64(bf) / r.FPS),
				round1(signalAt(r.Smoothed, bf)),
				round2(r.FPS),
			})
		}

		cr := vr.Contacts
		if cr == nil {
			continue
		}
		for i, cf := range cr.Frames {
			ctRows = append(ctRows, []string{
				r.Video,
				strconv.Itoa(i + 1),
				strconv.Itoa(cf),
				round2(float64(cf) / r.FPS),
				round1(signalAt(cr.Smoothed, cf)),
				round2(r.FPS),
			})
		}
		n := len(r.Peaks)
		if len(cr.Frames) < n {
			n = len(cr.Frames)
		}
		for i := 0; i < n; i++ {
			bf, cf := r.Peaks[i], cr.Frames[i]
			gap := cf - bf
			dsRows = append(dsRows, []string{
				r.Video,
				strconv.Itoa(i + 1),
				strconv.Itoa(bf),
				strconv.Itoa(cf),
				strconv.Itoa(gap),
				round3(float64(gap) / r.FPS),
				round2(r.FPS),
			})
		}
	}

	err := writeCSV(filepath.Join(dir, BackswingFile),
		[]string{"video", "swing_num", "backswing_frame", "backswing_time_s", "xy_signal", "fps"},
		bsRows)
	if err != nil {
		return err
	}

	if len(ctRows) > 0 {
		err = writeCSV(filepath.Join(dir, ContactFile),
			[]string{"video", "swing_num", "contact_frame", "contact_time_s", "xy_signal", "fps"},
			ctRows)
		if err != nil {
			return err
		}
	}

	if len(dsRows) > 0 {
		err = writeCSV(filepath.Join(dir, DownswingFile),
			[]string{"video", "swing_num", "backswing_frame", "contact_frame", "downswing_frames", "downswing_time_s", "fps"},
			dsRows)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

func signalAt(sig []float64, i int) float64 {
	if i < 0 || i >= len(sig) {
		return 0
	}
	return sig[i]
}

func round1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func round2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func round3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
