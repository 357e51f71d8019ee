package locale

import "regexp"

// hourCapture matches either a 1-2 digit hour or an hour word.
const hourCapture = `(\d{1,2}|[a-zäöüßáéíóú]+)`

func english() Table {
	return Table{
		Code: "en",

		TimeMarkers:   []string{"at", "around", "by", "about"},
		RangeWords:    []string{"between", "from", "to", "or", "until", "till"},
		UnitWords:     []string{"minute", "minutes", "min", "mins", "hour", "hours", "hr", "hrs"},
		QuantityWords: []string{"people", "persons", "guests", "party", "table", "for", "of"},
		OClockPattern: regexp.MustCompile(`(?i)\b(\d{1,2})\s*o'?\s?clock\b`),
		HourWords: map[string]int{
			"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
			"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
			"twelve": 12, "noon": 12, "midnight": 0,
		},
		SpokenForms: []SpokenForm{
			{Pattern: regexp.MustCompile(`(?i)\bhalf\s+past\s+` + hourCapture + `\b`), Minute: 30},
			{Pattern: regexp.MustCompile(`(?i)\bquarter\s+past\s+` + hourCapture + `\b`), Minute: 15},
			{Pattern: regexp.MustCompile(`(?i)\bquarter\s+to\s+` + hourCapture + `\b`), HourOffset: -1, Minute: 45},
		},

		Affirmative: []string{"yes", "yeah", "yep", "sure", "correct", "right", "exactly", "ok", "okay"},
		Negative:    []string{"no", "nope", "nah", "wrong", "incorrect"},
		ChoicePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:use|go with|keep|under|it's|its)\s+(.+)$`),
			regexp.MustCompile(`^(.+?)\s+please$`),
		},
		OrdinalFirst:  []string{"first", "1st", "1", "former"},
		OrdinalSecond: []string{"second", "2nd", "2", "latter"},

		RepromptPolite:  "Just to confirm the name for this booking: should I use %s or %s?",
		RepromptOptions: "Sorry, I still need to confirm the name. Please reply 1 for %s or 2 for %s.",
		RepromptFinal:   "Last try: reply 1 for %s or 2 for %s. Otherwise I'll continue with the name you just gave me.",
		FallbackNotice:  "I couldn't confirm the name, so I've gone ahead with %s. Let us know if that's wrong.",
	}
}

func spanish() Table {
	return Table{
		Code: "es",

		TimeMarkers:   []string{"a", "las", "sobre", "hacia", "para"},
		RangeWords:    []string{"entre", "desde", "hasta", "o", "u"},
		UnitWords:     []string{"minuto", "minutos", "min", "hora", "horas"},
		QuantityWords: []string{"personas", "comensales", "mesa", "para", "de"},
		OClockPattern: regexp.MustCompile(`(?i)\b(\d{1,2})\s+en\s+punto\b`),
		HourWords: map[string]int{
			"una": 1, "uno": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
			"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
			"once": 11, "doce": 12, "mediodía": 12, "mediodia": 12, "medianoche": 0,
		},
		SpokenForms: []SpokenForm{
			{Pattern: regexp.MustCompile(`(?i)\b` + hourCapture + `\s+y\s+media\b`), Minute: 30},
			{Pattern: regexp.MustCompile(`(?i)\b` + hourCapture + `\s+y\s+cuarto\b`), Minute: 15},
			{Pattern: regexp.MustCompile(`(?i)\b` + hourCapture + `\s+menos\s+cuarto\b`), HourOffset: -1, Minute: 45},
		},

		Affirmative: []string{"sí", "si", "claro", "correcto", "exacto", "vale", "eso"},
		Negative:    []string{"no", "incorrecto", "tampoco"},
		ChoicePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:usa|usar|pon|ponlo con|con el nombre de|a nombre de|deja)\s+(.+)$`),
			regexp.MustCompile(`^(.+?)\s+por favor$`),
		},
		OrdinalFirst:  []string{"primero", "primera", "1", "uno"},
		OrdinalSecond: []string{"segundo", "segunda", "2", "dos"},

		RepromptPolite:  "Para confirmar el nombre de la reserva: ¿uso %s o %s?",
		RepromptOptions: "Perdona, necesito confirmar el nombre. Responde 1 para %s o 2 para %s.",
		RepromptFinal:   "Último intento: responde 1 para %s o 2 para %s. Si no, seguiré con el nombre que acabas de darme.",
		FallbackNotice:  "No pude confirmar el nombre, así que he continuado con %s. Avísanos si no es correcto.",
	}
}

func german() Table {
	return Table{
		Code: "de",

		TimeMarkers:   []string{"um", "gegen", "ab"},
		RangeWords:    []string{"zwischen", "von", "bis", "oder"},
		UnitWords:     []string{"minute", "minuten", "min", "stunde", "stunden"},
		QuantityWords: []string{"personen", "gäste", "leute", "tisch", "für"},
		OClockPattern: regexp.MustCompile(`(?i)\b(\d{1,2})\s+uhr\b`),
		HourWords: map[string]int{
			"ein": 1, "eins": 1, "zwei": 2, "drei": 3, "vier": 4, "fünf": 5,
			"sechs": 6, "sieben": 7, "acht": 8, "neun": 9, "zehn": 10,
			"elf": 11, "zwölf": 12, "mittag": 12, "mitternacht": 0,
		},
		SpokenForms: []SpokenForm{
			// "halb acht" is 7:30, not 8:30.
			{Pattern: regexp.MustCompile(`(?i)\bhalb\s+` + hourCapture + `\b`), HourOffset: -1, Minute: 30},
			{Pattern: regexp.MustCompile(`(?i)\bviertel\s+nach\s+` + hourCapture + `\b`), Minute: 15},
			{Pattern: regexp.MustCompile(`(?i)\bviertel\s+vor\s+` + hourCapture + `\b`), HourOffset: -1, Minute: 45},
		},
		DecimalTime: true,

		Affirmative: []string{"ja", "genau", "richtig", "korrekt", "klar", "stimmt"},
		Negative:    []string{"nein", "nee", "falsch", "nicht"},
		ChoicePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:nimm|verwende|nutze|unter|auf den namen)\s+(.+)$`),
			regexp.MustCompile(`^(.+?)\s+bitte$`),
		},
		OrdinalFirst:  []string{"erste", "ersten", "erster", "1", "eins"},
		OrdinalSecond: []string{"zweite", "zweiten", "zweiter", "2", "zwei"},

		RepromptPolite:  "Nur zur Bestätigung des Namens für die Reservierung: soll ich %s oder %s verwenden?",
		RepromptOptions: "Entschuldigung, ich muss den Namen noch bestätigen. Bitte antworte mit 1 für %s oder 2 für %s.",
		RepromptFinal:   "Letzter Versuch: antworte mit 1 für %s oder 2 für %s. Sonst verwende ich den eben genannten Namen.",
		FallbackNotice:  "Ich konnte den Namen nicht bestätigen und habe daher %s verwendet. Sag uns Bescheid, falls das falsch ist.",
	}
}
