package signals

import "regexp"

// Keyword tables for the lead heuristics. Matching is plain substring
// containment against normalized (lowercase, accent-stripped) text, so every
// term here must already be lowercase and accent-free. Substring matches
// inside unrelated words are accepted; the scoring tiers absorb the noise.
var (
	// commercialTerms signal buying intent: budget/quote/pricing vocabulary
	// plus the facility types this business actually services.
	commercialTerms = []string{
		"presupuesto",
		"cotizacion",
		"precio",
		"valores",
		"cuanto sale",
		"cuanto cuesta",
		"abono",
		"limpieza",
		"oficina",
		"industrial",
		"planta",
		"consorcio",
		"edificio",
		"club",
		"municipio",
		"m2",
		"metros",
		"semanal",
		"mensual",
		"diaria",
		"frecuencia",
		"visita",
		"relevamiento",
		"contratar",
		"servicio de limpieza",
		"final de obra",
	}

	// detailTerms signal operational specifics: area measurements, schedule
	// cadence, facility and nearby-location names.
	detailTerms = []string{
		"m2",
		"metros",
		"metros cuadrados",
		"semanal",
		"quincenal",
		"mensual",
		"diaria",
		"frecuencia",
		"horario",
		"turno",
		"por semana",
		"veces por",
		"planta",
		"deposito",
		"galpon",
		"sucursal",
		"campana",
		"zarate",
		"escobar",
		"pilar",
		"san nicolas",
		"buenos aires",
	}

	// jobTerms mark job-seeker messages. Bare "cv" is handled by pattern, not
	// by this list, so it can be anchored on word boundaries.
	jobTerms = []string{
		"busco trabajo",
		"buscando trabajo",
		"busco empleo",
		"quiero trabajar",
		"busqueda laboral",
		"curriculum",
		"empleo",
		"rrhh",
		"recursos humanos",
		"postular",
		"postulacion",
		"postulante",
		"vacante",
		"experiencia laboral",
	}

	// spamTerms mark promotion/spam topics unrelated to cleaning services.
	spamTerms = []string{
		"seo",
		"posicionamiento web",
		"marketing digital",
		"backlinks",
		"seguidores",
		"followers",
		"crypto",
		"criptomoneda",
		"bitcoin",
		"forex",
		"trading",
		"inversion garantizada",
		"casino",
		"apuestas",
		"viagra",
		"xxx",
		"porno",
		"ganar dinero",
		"prestamo rapido",
		"loan",
	}
)

// Anchored patterns evaluated against normalized text.
var (
	// jobPhrasePatterns catch job intent the keyword list cannot anchor.
	jobPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bcv\b`),
		regexp.MustCompile(`\badjunto\b.{0,30}\b(cv|curriculum)\b`),
		regexp.MustCompile(`\blooking for (a )?(job|work)\b`),
		regexp.MustCompile(`\bapply(ing)? for\b`),
		regexp.MustCompile(`\btrabajar (con|en) ustedes\b`),
	}

	// cvFilePattern is strong evidence on its own: a CV plus a file format.
	cvFilePattern = regexp.MustCompile(`\bcv\b.*\b(pdf|docx?)\b|\b(pdf|docx?)\b.*\bcv\b`)

	// fillerPatterns flag generic test/filler content: literal test strings
	// and keyboard-row mashes.
	fillerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(test|testing|prueba)\b`),
		regexp.MustCompile(`\b(asdf|qwer|zxcv|qwerty|asdasd)\b`),
		regexp.MustCompile(`\blorem ipsum\b`),
		regexp.MustCompile(`^[\d\s.,-]+$`),
	}

	// shortenerDomains are flagged regardless of how many URLs appear.
	shortenerDomains = []string{
		"bit.ly",
		"tinyurl.com",
		"t.co/",
		"goo.gl",
		"cutt.ly",
		"rebrand.ly",
		"is.gd",
		"ow.ly",
		"shorturl.at",
		"tiny.cc",
	}

	urlPrefixes = []string{"http://", "https://", "www."}
)
