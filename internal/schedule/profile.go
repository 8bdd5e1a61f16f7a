package schedule

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/constants"
)

// Profile names where the metadata block and the column header sit in a
// file. Line indexes are 0-based physical lines.
type Profile struct {
	Name          string
	MetadataStart int
	MetadataRows  int
	HeaderLine    int
}

var (
	// ProfileA has a blank first line, metadata on lines 1-3, a blank line 4
	// and the column header on line 5.
	ProfileA = Profile{Name: constants.ProfileA, MetadataStart: 1, MetadataRows: 3, HeaderLine: 5}

	// ProfileB has metadata on lines 0-2, blank lines 3-5 and the column
	// header on line 6.
	ProfileB = Profile{Name: constants.ProfileB, MetadataStart: 0, MetadataRows: 3, HeaderLine: 6}

	// ExportProfile is the layout written on export and therefore the one a
	// generated and exported schedule is read back with.
	ExportProfile = ProfileA
)

// Profiles lists the supported layouts in probing order.
func Profiles() []Profile {
	return []Profile{ProfileA, ProfileB}
}

// LookupProfile resolves a profile by name. The second result is false for
// "auto" (or empty), meaning the caller should probe with DetectProfile.
func LookupProfile(name string) (Profile, bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", constants.ProfileAuto:
		return Profile{}, false, nil
	case constants.ProfileA:
		return ProfileA, true, nil
	case constants.ProfileB:
		return ProfileB, true, nil
	default:
		return Profile{}, false, fmt.Errorf("unknown profile %q, expected %s, %s or %s",
			name, constants.ProfileAuto, constants.ProfileA, constants.ProfileB)
	}
}

// DetectProfile probes each layout against the file: a readable metadata
// block scores two, a header line naming a known column scores one. Ties
// go to A when the first line is blank and to B otherwise.
func DetectProfile(lines [][]string) Profile {
	fallback := ProfileB
	if len(lines) == 0 || isBlankRecord(lines[0]) {
		fallback = ProfileA
	}

	best, bestScore := fallback, scoreProfile(lines, fallback)
	for _, p := range Profiles() {
		if score := scoreProfile(lines, p); score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}

func scoreProfile(lines [][]string, p Profile) int {
	score := 0
	if _, err := ParseMetadata(lines, p); err == nil {
		score += 2
	}
	if p.HeaderLine < len(lines) {
		for j, cell := range lines[p.HeaderLine] {
			if j == 0 {
				continue
			}
			if _, ok := lookupColumn(cell); ok {
				score++
				break
			}
		}
	}
	return score
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
