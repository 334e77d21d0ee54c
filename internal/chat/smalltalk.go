// Package chat распознает реплики, не являющиеся поисковыми запросами, и отвечает на них.
package chat

import (
	"regexp"
	"strings"
)

type replyRule struct {
	phrases []string
	reply   string
}

// Порядок правил определяет приоритет: "good night" проверяется раньше общих прощаний.
var replies = []replyRule{
	{
		phrases: []string{"good morning"},
		reply:   "Good morning! What a beautiful day to find some great local services! How can I assist you today?",
	},
	{
		phrases: []string{"good afternoon"},
		reply:   "Good afternoon! Hope you're having a wonderful day! What services are you looking for?",
	},
	{
		phrases: []string{"good evening"},
		reply:   "Good evening! How can I help you find the perfect local services tonight?",
	},
	{
		phrases: []string{"good night"},
		reply:   "Good night! I'll be here whenever you need to find local services again!",
	},
	{
		phrases: []string{"namaste"},
		reply:   "Namaste! Welcome! I'm here to help you discover amazing local services. What are you looking for today?",
	},
	{
		phrases: []string{"how are you"},
		reply:   "I'm doing fantastic, thank you for asking! How are you doing today? What can I help you discover?",
	},
	{
		phrases: []string{"what are you", "who are you", "tell about yourself", "about you"},
		reply: "I'm your Local Service Finder! I help you discover and connect with local businesses: " +
			"restaurants, repair services, doctors, salons, gyms and much more. Just tell me what you're looking for!",
	},
	{
		phrases: []string{"your name"},
		reply:   "I'm your Local Service Assistant! I'm here to help you find exactly what you need in your area!",
	},
	{
		phrases: []string{"what do you do"},
		reply: "I help you find local services! Whether you need a plumber, a new restaurant or a doctor, " +
			"I'll search the listings to find the best matches. Just describe what you're looking for!",
	},
	{
		phrases: []string{"thank you", "thanks", "thx", "appreciate"},
		reply:   "You're very welcome! Feel free to ask me anything else you need!",
	},
	{
		phrases: []string{"goodbye", "bye", "see you", "take care"},
		reply:   "Goodbye! It was great helping you today! Come back anytime you need to find local services!",
	},
	{
		phrases: []string{"hello", "hi", "hey"},
		reply: "Hello! I'm your friendly Local Service Finder assistant! I can help you discover restaurants, " +
			"repair services, doctors, salons and much more in your area. What are you looking for?",
	},
}

const defaultReply = "I'm here to help you find local services whenever you need them. You can ask me about " +
	"restaurants, repair services, doctors, salons, gyms, or any other business you're looking for!"

var serviceWords = []string{
	"service", "repair", "doctor", "restaurant", "food", "plumber", "electrician", "gym", "salon",
	"dentist", "cafe", "lawyer", "ac", "bike", "clinic", "beauty",
}

var (
	phrasePatterns = compilePhrases()
	servicePattern = pluralWordsPattern(serviceWords)
)

func compilePhrases() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(replies))
	for i, r := range replies {
		out[i] = wordsPattern(r.phrases)
	}
	return out
}

// wordsPattern совпадает с любой из фраз целиком; "hi" не срабатывает внутри "chinese".
func wordsPattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// pluralWordsPattern совпадает со словом и его формой множественного числа: "plumbers", "dentists".
func pluralWordsPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)(?:s|es)?\b`)
}

// IsConversational сообщает, является ли сообщение приветствием, благодарностью, прощанием,
// вопросом об ассистенте или коротким сообщением без упоминания услуг.
func IsConversational(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, p := range phrasePatterns {
		if p.MatchString(text) && !servicePattern.MatchString(text) {
			return true
		}
	}
	return len(strings.Fields(text)) <= 3 && !servicePattern.MatchString(text) && !hasDigits(text)
}

func hasDigits(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// Reply возвращает готовый ответ на разговорную реплику.
func Reply(text string) string {
	for i, p := range phrasePatterns {
		if p.MatchString(text) {
			return replies[i].reply
		}
	}
	return defaultReply
}
