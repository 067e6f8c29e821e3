package midi

import "strings"

// MatchPort returns the index of the first name containing portName, ignoring case, or -1.
// An empty portName matches the first name.
func MatchPort(names []string, portName string) int {
	want := strings.ToLower(portName)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), want) {
			return i
		}
	}
	return -1
}
