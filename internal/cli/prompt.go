package cli

import (
	"bufio"
	"fmt"
	"strings"
)

// askResume asks whether a run should continue at the saved row index.
// Anything but "f" starts over.
func (a *app) askResume(index int) (bool, error) {
	fmt.Fprintf(a.stderr, "📄 Fortschritt gefunden: %d Zeilen verarbeitet.\n", index)
	fmt.Fprint(a.stderr, "🔁 Fortsetzen [F] oder Neu starten [N]? ")

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	return strings.EqualFold(strings.TrimSpace(line), "f"), nil
}
