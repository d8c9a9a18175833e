package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/indiandesillm/inference-core/internal/contract"
)

// The factual floor is a closed rule table answering a small set of common
// factual prompts without any generative path. Rules are checked in order;
// the first hit wins, so the table is deterministic by construction.

type floorRule struct {
	id     string
	match  func(lower, raw string) bool
	answer map[contract.Language]string
}

var fullFormMarkers = []string{"stand for", "stands for", "full form"}

func asksFullForm(lower, term string) bool {
	if !strings.Contains(lower, term) {
		return false
	}
	for _, m := range fullFormMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

var floorRules = []floorRule{
	{
		id:    "acronym_dns",
		match: func(lower, _ string) bool { return asksFullForm(lower, "dns") },
		answer: map[contract.Language]string{
			contract.LangEN: "Domain Name System.",
		},
	},
	{
		// Checked before plain http; "https" contains "http".
		id:    "acronym_https",
		match: func(lower, _ string) bool { return asksFullForm(lower, "https") },
		answer: map[contract.Language]string{
			contract.LangEN: "HTTPS stands for HyperText Transfer Protocol Secure.",
		},
	},
	{
		id:    "acronym_http",
		match: func(lower, _ string) bool { return asksFullForm(lower, "http") },
		answer: map[contract.Language]string{
			contract.LangEN: "HTTP stands for HyperText Transfer Protocol.",
		},
	},
	{
		id:    "acronym_cpu",
		match: func(lower, _ string) bool { return asksFullForm(lower, "cpu") },
		answer: map[contract.Language]string{
			contract.LangEN: "CPU stands for Central Processing Unit.",
		},
	},
	{
		id:    "acronym_upi",
		match: func(lower, _ string) bool { return asksFullForm(lower, "upi") },
		answer: map[contract.Language]string{
			contract.LangEN: "UPI stands for Unified Payments Interface.",
		},
	},
	{
		id:    "acronym_rbi",
		match: func(lower, _ string) bool { return asksFullForm(lower, "rbi") },
		answer: map[contract.Language]string{
			contract.LangEN: "RBI stands for Reserve Bank of India.",
		},
	},
	{
		id:    "acronym_ifsc",
		match: func(lower, _ string) bool { return asksFullForm(lower, "ifsc") },
		answer: map[contract.Language]string{
			contract.LangEN: "IFSC stands for Indian Financial System Code.",
		},
	},
	{
		id: "india_independence_day",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "independence day") &&
				(strings.Contains(lower, "india") || strings.Contains(raw, "भारत"))) ||
				strings.Contains(raw, "स्वतंत्रता दिवस")
		},
		answer: map[contract.Language]string{
			contract.LangEN: "India's Independence Day is 15 August 1947.",
			contract.LangHI: "भारत का स्वतंत्रता दिवस 15 अगस्त 1947 है।",
		},
	},
	{
		id: "india_republic_day",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "republic day") &&
				(strings.Contains(lower, "india") || strings.Contains(raw, "भारत"))) ||
				strings.Contains(raw, "गणतंत्र दिवस")
		},
		answer: map[contract.Language]string{
			contract.LangEN: "India's Republic Day is on 26 January.",
			contract.LangHI: "भारत का गणतंत्र दिवस 26 जनवरी को होता है।",
		},
	},
	{
		id: "india_capital",
		match: func(lower, raw string) bool {
			return strings.Contains(lower, "capital of india") ||
				strings.Contains(raw, "भारत की राजधानी") ||
				(strings.Contains(lower, "capital") && strings.Contains(lower, "india"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "New Delhi is the capital of India.",
			contract.LangHI: "नई दिल्ली भारत की राजधानी है।",
		},
	},
	{
		id: "currency_japan",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "japan") || strings.Contains(raw, "जापान")) &&
				(strings.Contains(lower, "currency") || strings.Contains(raw, "मुद्रा"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "The currency of Japan is the Japanese Yen.",
			contract.LangHI: "जापान की मुद्रा जापानी येन है।",
		},
	},
	{
		id: "moon_first_human",
		match: func(lower, raw string) bool {
			moon := strings.Contains(lower, "moon") || strings.Contains(lower, "chand") ||
				strings.Contains(raw, "चंद्रमा") || strings.Contains(raw, "चाँद")
			first := strings.Contains(lower, "first") || strings.Contains(lower, "pehla") ||
				strings.Contains(lower, "insaan") || strings.Contains(lower, "human") ||
				strings.Contains(raw, "पहला")
			return moon && first
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Neil Armstrong was the first human on the Moon.",
			contract.LangHI: "चंद्रमा पर पहला इंसान नील आर्मस्ट्रॉन्ग था।",
		},
	},
	{
		id: "india_constitution_effective",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "constitution") || strings.Contains(raw, "संविधान")) &&
				(strings.Contains(lower, "india") || strings.Contains(raw, "भारत")) &&
				(strings.Contains(lower, "when") || strings.Contains(lower, "kab") ||
					strings.Contains(raw, "कब") || strings.Contains(raw, "लागू"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "The Constitution of India came into effect on 26 January 1950.",
			contract.LangHI: "भारत का संविधान 26 जनवरी 1950 को लागू हुआ।",
		},
	},
	{
		id: "chem_water_h2o",
		match: func(lower, _ string) bool {
			return strings.Contains(lower, "formula") && strings.Contains(lower, "water")
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Water's molecular formula is H2O.",
			contract.LangHI: "H2O पानी का रासायनिक सूत्र है।",
		},
	},
	{
		id: "planet_closest_to_sun",
		match: func(lower, _ string) bool {
			return strings.Contains(lower, "closest") && strings.Contains(lower, "sun") &&
				strings.Contains(lower, "planet")
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Mercury is the closest planet to the Sun.",
			contract.LangHI: "सूर्य के सबसे नज़दीक ग्रह बुध है।",
		},
	},
	{
		id: "planet_red",
		match: func(lower, raw string) bool {
			return strings.Contains(lower, "red planet") ||
				((strings.Contains(lower, "planet") || strings.Contains(raw, "ग्रह")) &&
					(strings.Contains(lower, "red") || strings.Contains(raw, "लाल")))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "It is Mars.",
			contract.LangHI: "वह ग्रह मंगल है।",
		},
	},
	{
		id: "discover_penicillin",
		match: func(lower, _ string) bool {
			return strings.Contains(lower, "penicillin") &&
				(strings.Contains(lower, "who") || strings.Contains(lower, "discovered"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Alexander Fleming discovered penicillin.",
			contract.LangHI: "पेनिसिलिन की खोज अलेक्ज़ेंडर फ्लेमिंग ने की।",
		},
	},
	{
		id: "ocean_largest",
		match: func(lower, raw string) bool {
			return strings.Contains(lower, "largest ocean") ||
				((strings.Contains(lower, "ocean") || strings.Contains(raw, "महासागर")) &&
					(strings.Contains(lower, "largest") || strings.Contains(raw, "सबसे बड़ा")))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Pacific Ocean.",
			contract.LangHI: "प्रशांत महासागर सबसे बड़ा है।",
		},
	},
	{
		id: "india_national_anthem_author",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "national anthem") || strings.Contains(raw, "राष्ट्रीय गान")) &&
				(strings.Contains(lower, "india") || strings.Contains(raw, "भारत"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Rabindranath Tagore wrote India's national anthem.",
			contract.LangHI: "राष्ट्रीय गान रवींद्रनाथ टैगोर ने लिखा।",
		},
	},
	{
		id: "india_national_animal",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "national animal") || strings.Contains(raw, "राष्ट्रीय पशु")) &&
				(strings.Contains(lower, "india") || strings.Contains(raw, "भारत"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "India's national animal is the Bengal tiger.",
			contract.LangHI: "भारत का राष्ट्रीय पशु बाघ (रॉयल बंगाल टाइगर) है।",
		},
	},
	{
		id: "evolution_natural_selection",
		match: func(lower, raw string) bool {
			return (strings.Contains(lower, "evolution") && strings.Contains(lower, "natural selection")) ||
				strings.Contains(raw, "प्राकृतिक चयन")
		},
		answer: map[contract.Language]string{
			contract.LangEN: "Charles Darwin proposed evolution by natural selection.",
			contract.LangHI: "प्राकृतिक चयन द्वारा विकास का सिद्धांत चार्ल्स डार्विन से जुड़ा है।",
		},
	},
	{
		id: "history_french_revolution_start",
		match: func(lower, _ string) bool {
			return strings.Contains(lower, "french revolution") &&
				(strings.Contains(lower, "which year") || strings.Contains(lower, "saal"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "It began in 1789.",
		},
	},
	{
		id: "bio_heart_pumps_blood",
		match: func(lower, _ string) bool {
			return (strings.Contains(lower, "organ") && strings.Contains(lower, "pumps blood")) ||
				(strings.Contains(lower, "blood") && strings.Contains(lower, "pump"))
		},
		answer: map[contract.Language]string{
			contract.LangEN: "The heart pumps blood through the body.",
			contract.LangHI: "दिल (हृदय) रक्त पंप करता है।",
		},
	},
	{
		id: "india_parliament_two_houses",
		match: func(lower, raw string) bool {
			houses := strings.Contains(lower, "parliament") ||
				strings.Contains(raw, "सदन") || strings.Contains(raw, "संसद")
			count := strings.Contains(lower, "two") || strings.Contains(lower, "do") ||
				strings.Contains(raw, "दो")
			return houses && count
		},
		answer: map[contract.Language]string{
			contract.LangEN: "The two Houses are the Lok Sabha and the Rajya Sabha.",
			contract.LangHI: "भारतीय संसद के दो सदन हैं: लोकसभा और राज्यसभा।",
		},
	},
}

var (
	hoursEN = regexp.MustCompile(`\b(\d+)\s*(ghante|ghanta|hour|hours)\b`)
	hoursHI = regexp.MustCompile(`(\d+)\s*(घंटे|घंटा)`)
	minutes = regexp.MustCompile(`\b(minute|minutes|min)\b`)
)

// floorAnswer returns the floor answer and rule id for prompt, or ok=false
// when no rule matches.
func floorAnswer(prompt string, lang contract.Language) (text, ruleID string, ok bool) {
	lower := strings.ToLower(prompt)

	// Simple time-unit conversion, the one computed rule in the table.
	if m := hoursEN.FindStringSubmatch(lower); m != nil && minutes.MatchString(lower) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return strconv.Itoa(n*60) + " minutes.", "unit_hours_to_minutes", true
		}
	}
	if m := hoursHI.FindStringSubmatch(prompt); m != nil &&
		(minutes.MatchString(lower) || strings.Contains(prompt, "मिनट")) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if lang == contract.LangHI {
				return strconv.Itoa(n*60) + " मिनट।", "unit_hours_to_minutes", true
			}
			return strconv.Itoa(n*60) + " minutes.", "unit_hours_to_minutes", true
		}
	}

	for _, r := range floorRules {
		if !r.match(lower, prompt) {
			continue
		}
		if t, found := r.answer[lang]; found {
			return t, r.id, true
		}
		if t, found := r.answer[contract.LangEN]; found {
			return t, r.id, true
		}
	}
	return "", "", false
}
