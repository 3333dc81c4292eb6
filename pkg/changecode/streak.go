package changecode

// DefaultStreakMinRun is the run length an Up streak must exceed before each
// further Up quarter is counted.
const DefaultStreakMinRun = 2

// CountLongStreaks counts Up quarters that extend a run past its second
// quarter. A run of L >= 3 consecutive Up codes contributes L-2.
func CountLongStreaks(codes []ChangeCode) int {
	return CountStreaksLongerThan(codes, DefaultStreakMinRun)
}

// CountStreaksLongerThan is CountLongStreaks with a configurable run length.
// A negative minRun is treated as zero.
func CountStreaksLongerThan(codes []ChangeCode, minRun int) int {
	if minRun < 0 {
		minRun = 0
	}

	total := 0
	current := 0
	for _, code := range codes {
		if code != Up {
			current = 0
			continue
		}
		current++
		if current > minRun {
			total++
		}
	}
	return total
}

// LongestStreak returns the length of the longest run of Up codes.
func LongestStreak(codes []ChangeCode) int {
	longest := 0
	current := 0
	for _, code := range codes {
		if code != Up {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}
