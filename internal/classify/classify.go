// Package classify turns a contact submission into a status, a score and a
// trail of reason tags. Disqualifying evidence is checked first as hard gates;
// weighted scoring only decides how strong an already-plausible lead is.
package classify

import (
	"unicode/utf8"

	"github.com/neolimp/leadfilter/internal/signals"
	"github.com/neolimp/leadfilter/internal/textnorm"
)

// Status is the closed set of classification outcomes.
type Status string

const (
	StatusLead       Status = "consulta_real"
	StatusSuspicious Status = "sospechoso"
	StatusJobSeeker  Status = "busca_trabajo"
	StatusSpam       Status = "spam"
)

// Reason tags, appended in evaluation order. Diagnostic only; nothing parses
// them back.
const (
	ReasonBadEmail        = "email_invalido"
	ReasonBadPhone        = "telefono_invalido"
	ReasonShortMessage    = "mensaje_muy_corto"
	ReasonGibberish       = "gibberish"
	ReasonJobKeyword      = "keyword_trabajo"
	ReasonSpamKeywords    = "spam_keywords"
	ReasonSuspiciousURL   = "url_sospechosa"
	ReasonBotTemplate     = "parece_bot_template"
	ReasonNoCommercial    = "sin_keywords_comerciales"
	ReasonNoDetail        = "sin_detalle_operativo"
	ReasonPartialIntent   = "intencion_parcial"
	ReasonNoIntentSignals = "sin_senales_de_consulta"
)

const (
	hardRejectScore = -100
	minMessageLen   = 20
	shortMessageLen = 120
	leadThreshold   = 55
	spamScoreCeil   = 5
	minSpamHits     = 2
	serviceOther    = "otro"
)

// Submission is the classifier's view of a contact form payload. Fields are
// raw; normalization happens inside Classify.
type Submission struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Service string
	Message string
}

// Result is a status plus a signed score and the reasons that produced it.
type Result struct {
	Status  Status   `json:"status"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

func hardReject(status Status, reason string) Result {
	return Result{Status: status, Score: hardRejectScore, Reasons: []string{reason}}
}

// Classify is total: any input produces a Result, never an error. It is a pure
// function of the submission, so classifying twice gives identical results.
func Classify(sub Submission) Result {
	name := textnorm.Normalize(sub.Name)
	company := textnorm.Normalize(sub.Company)
	email := textnorm.Normalize(sub.Email)
	service := textnorm.Normalize(sub.Service)
	msg := textnorm.Normalize(sub.Message)
	msgLen := utf8.RuneCountInString(msg)

	// Field validity gates. Each is an immediate spam verdict; a later rule
	// must never out-vote a disqualifier.
	if !signals.ValidEmailShape(email) {
		return hardReject(StatusSpam, ReasonBadEmail)
	}
	if !signals.PlausiblePhone(sub.Phone) {
		return hardReject(StatusSpam, ReasonBadPhone)
	}
	if msgLen < minMessageLen {
		return hardReject(StatusSpam, ReasonShortMessage)
	}
	if signals.IsGibberish(msg) {
		return hardReject(StatusSpam, ReasonGibberish)
	}

	// Job-seeking beats any commercial signal: a job application mentioning
	// pricing must never be reclassified as a lead.
	if signals.JobIntent(msg) {
		return hardReject(StatusJobSeeker, ReasonJobKeyword)
	}

	if signals.SpamHits(msg) >= minSpamHits {
		return hardReject(StatusSpam, ReasonSpamKeywords)
	}

	// A short message whose only content is a link is non-actionable whatever
	// its topic. Long messages with links fall through to scoring.
	if urls := signals.DetectURLs(sub.Message); urls.HasURL() && msgLen < shortMessageLen {
		return hardReject(StatusSpam, ReasonSuspiciousURL)
	}

	if signals.LooksLikeBotTemplate(msg) {
		return Result{Status: StatusSuspicious, Score: 0, Reasons: []string{ReasonBotTemplate}}
	}

	// Weighted scoring: every disqualifier has passed, so now decide how
	// strong the inquiry is.
	score := 0
	var reasons []string

	commercial := signals.CommercialHits(msg)
	switch {
	case commercial >= 3:
		score += 50
	case commercial == 2:
		score += 35
	case commercial == 1:
		score += 20
	default:
		reasons = append(reasons, ReasonNoCommercial)
	}

	detail := signals.DetailHits(msg)
	switch {
	case detail >= 3:
		score += 30
	case detail == 2:
		score += 20
	case detail == 1:
		score += 10
	default:
		reasons = append(reasons, ReasonNoDetail)
	}

	specificService := service != "" && service != serviceOther
	if specificService {
		score += 10
	}
	if signals.PlausibleName(name) {
		score += 5
	}
	if len(company) >= 3 {
		score += 5
	}
	if msgLen >= 60 {
		score += 10
	}
	if msgLen >= 140 {
		score += 5
	}

	// Zero-hit penalties stack with the zero tiers above on purpose, pushing
	// ambiguous-but-not-gated messages down.
	if commercial == 0 {
		score -= 10
	}
	if detail == 0 {
		score -= 10
	}

	switch {
	case commercial >= 1 && (detail >= 1 || specificService) && score >= leadThreshold:
		return Result{Status: StatusLead, Score: score, Reasons: reasons}
	case commercial >= 1:
		reasons = append(reasons, ReasonPartialIntent)
		return Result{Status: StatusSuspicious, Score: score, Reasons: reasons}
	default:
		// Clamp so a signal-free message cannot report a flattering score.
		if score > spamScoreCeil {
			score = spamScoreCeil
		}
		reasons = append(reasons, ReasonNoIntentSignals)
		return Result{Status: StatusSpam, Score: score, Reasons: reasons}
	}
}
