package speech

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"hearing_reminder_bot/internal/domain/hearing"
)

var teluguMonths = [...]string{
	"జనవరి", "ఫిబ్రవరి", "మార్చి", "ఏప్రిల్", "మే", "జూన్",
	"జూలై", "ఆగస్టు", "సెప్టెంబర్", "అక్టోబర్", "నవెంబర్", "డిసెంబర్",
}

var (
	isoDatePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	inDaysPattern  = regexp.MustCompile(`is in (\d+) days, on `)
)

// Longer phrases first: the replacer tries them in argument order.
var teluguPhrases = strings.NewReplacer(
	"Your number is not registered in the system.", "మీ నంబర్ సిస్టమ్‌లో నమోదు కాలేదు.",
	"Your next hearing:", "మీ తదుపరి విచారణ వివరాలు:",
	"You have no upcoming hearings.", "మీకు ముందున్న విచారణలు లేవు.",
	"No hearings scheduled for you.", "మీకు షెడ్యూల్ చేసిన విచారణలు లేవు.",
	"No hearing history found.", "మీ విచారణ చరిత్రలో వివరాలు లభించలేదు.",
	"Your Case Hearing History:", "మీ కేసుల విచారణ చరిత్ర:",
	"Case not found.", "కేసు కనుగొనబడలేదు.",
	"Reminder: Your hearing for ", "రిమైండర్: మీ విచారణ ",
	" is today, ", " ఈరోజు, ",
	" is tomorrow, ", " రేపు, ",
	"- Advocate Office", "- న్యాయవాది కార్యాలయం",
	"Dear ", "ప్రియమైన ",
	"Case", "కేసు నంబర్",
	"Client:", "క్లయింట్:",
	"Date:", "తేదీ:",
	"Hearings:", "విచారణలు:",
	" at ", " సమయం ",
)

// Localize rewrites an English reply into Telugu-friendly speech text.
// Phrases it does not know pass through unchanged.
func Localize(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	text = inDaysPattern.ReplaceAllString(text, "$1 రోజుల్లో, ")
	text = teluguPhrases.Replace(text)
	return isoDatePattern.ReplaceAllStringFunc(text, FormatDateTelugu)
}

// FormatDateTelugu renders YYYY-MM-DD as "17 డిసెంబర్ 2025". Input that is
// not a valid date is returned as is.
func FormatDateTelugu(iso string) string {
	d, err := time.Parse(hearing.DateLayout, strings.TrimSpace(iso))
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d %s %d", d.Day(), teluguMonths[d.Month()-1], d.Year())
}
