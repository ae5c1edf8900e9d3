package format

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var monthNames = map[string][12]string{
	"tr": {"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran", "Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık"},
	"es": {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	"ru": {"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"},
}

// FmtDate formats t as a long date in lang. Unknown languages use English.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	lang = strings.ToLower(lang)
	names, ok := monthNames[lang]
	if !ok {
		return t.Format("January 2, 2006")
	}
	day := strconv.Itoa(t.Day())
	month := names[t.Month()-1]
	year := strconv.Itoa(t.Year())
	switch lang {
	case "es":
		return day + " de " + month + " de " + year
	case "ru":
		return day + " " + month + " " + year + " г."
	default:
		return day + " " + month + " " + year
	}
}

// ISODate is the machine-readable form used in <time datetime>.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// FmtNumber groups digits the way lang writes them.
func FmtNumber(n int, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", n)
}
