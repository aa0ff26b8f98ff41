package transcribe

import (
	"fmt"
	"sort"
	"strings"
)

// FormatTranscript renders diarized segments as the plain-text transcript
// layout: a header naming the source file, then speaker blocks with
// [mm:ss.d - mm:ss.d] timestamps on each utterance.
func FormatTranscript(filename string, segments []Segment) string {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	fmt.Fprintf(&b, "Transcript for: %s\n", filename)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	currentSpeaker := ""
	for i, seg := range sorted {
		if seg.Speaker != currentSpeaker {
			currentSpeaker = seg.Speaker
			if i > 0 {
				b.WriteString("\n")
			}
			if currentSpeaker != "" {
				fmt.Fprintf(&b, "\nSpeaker %s:\n%s\n", currentSpeaker, strings.Repeat("-", 20))
			}
		}
		fmt.Fprintf(&b, "%s %s\n", timestampRange(seg.Start, seg.End), seg.Text)
	}
	return b.String()
}

func timestampRange(start, end float64) string {
	return fmt.Sprintf("[%s - %s]", timestamp(start), timestamp(end))
}

func timestamp(seconds float64) string {
	whole := int(seconds)
	tenths := int((seconds - float64(whole)) * 10)
	return fmt.Sprintf("%02d:%02d.%01d", whole/60, whole%60, tenths)
}
