package client

import "strings"

var translations = map[string]map[string]string{
	"en": {
		"voice_click_to_start": "Click to start speaking",
		"chat_listening":       "Listening...",
		"voice_processing":     "...",
		"voice_error":          "Error occurred",
		"voice_unsupported":    "Speech recognition is not supported on this device.",
		"voice_busy":           "Still working on your last message...",
		"chat_thinking":        "MindCare is typing...",
		"chat_fallback":        "I'm having trouble connecting to my knowledge base right now. Please check your internet or try again in a moment.",
		"chat_new":             "Started a new conversation.",
		"chat_placeholder":     "Type your message here...",
		"quick_stressed":       "I'm feeling stressed",
		"quick_breathing":      "Breathing exercise",
		"quick_resources":      "Find resources",
		"sentiment_happy":      "You seem happy",
		"sentiment_sad":        "You seem sad",
		"sentiment_anxious":    "You seem anxious",
		"sentiment_angry":      "You seem upset",
		"sentiment_calm":       "You seem calm",
		"sentiment_neutral":    "Neutral",
	},
	"hi": {
		"voice_click_to_start": "बोलना शुरू करने के लिए क्लिक करें",
		"chat_listening":       "सुन रहा हूँ...",
		"voice_processing":     "...",
		"voice_error":          "त्रुटि हुई",
		"voice_unsupported":    "इस डिवाइस पर वाक् पहचान समर्थित नहीं है।",
		"voice_busy":           "आपके पिछले संदेश पर काम चल रहा है...",
		"chat_thinking":        "MindCare लिख रहा है...",
		"chat_fallback":        "अभी मुझे अपने ज्ञान आधार से जुड़ने में परेशानी हो रही है। कृपया अपना इंटरनेट जांचें या थोड़ी देर बाद फिर से प्रयास करें।",
		"chat_new":             "नई बातचीत शुरू हुई।",
		"chat_placeholder":     "अपना संदेश यहाँ लिखें...",
		"quick_stressed":       "मैं तनाव महसूस कर रहा हूँ",
		"quick_breathing":      "साँस लेने का व्यायाम",
		"quick_resources":      "संसाधन खोजें",
		"sentiment_happy":      "आप खुश लग रहे हैं",
		"sentiment_sad":        "आप उदास लग रहे हैं",
		"sentiment_anxious":    "आप चिंतित लग रहे हैं",
		"sentiment_angry":      "आप परेशान लग रहे हैं",
		"sentiment_calm":       "आप शांत लग रहे हैं",
		"sentiment_neutral":    "सामान्य",
	},
	"mr": {
		"voice_click_to_start": "बोलायला सुरुवात करण्यासाठी क्लिक करा",
		"chat_listening":       "ऐकत आहे...",
		"voice_processing":     "...",
		"voice_error":          "त्रुटी आली",
		"voice_unsupported":    "या डिव्हाइसवर आवाज ओळख समर्थित नाही.",
		"voice_busy":           "तुमच्या मागील संदेशावर काम सुरू आहे...",
		"chat_thinking":        "MindCare लिहित आहे...",
		"chat_fallback":        "सध्या माझ्या ज्ञानकोशाशी जोडणी करण्यात अडचण येत आहे. कृपया तुमचे इंटरनेट तपासा किंवा थोड्या वेळाने पुन्हा प्रयत्न करा.",
		"chat_new":             "नवीन संभाषण सुरू झाले.",
		"chat_placeholder":     "तुमचा संदेश येथे लिहा...",
		"quick_stressed":       "मला ताण जाणवत आहे",
		"quick_breathing":      "श्वसनाचा व्यायाम",
		"quick_resources":      "संसाधने शोधा",
		"sentiment_happy":      "तुम्ही आनंदी दिसता",
		"sentiment_sad":        "तुम्ही दुःखी दिसता",
		"sentiment_anxious":    "तुम्ही चिंतेत दिसता",
		"sentiment_angry":      "तुम्ही नाराज दिसता",
		"sentiment_calm":       "तुम्ही शांत दिसता",
		"sentiment_neutral":    "सामान्य",
	},
}

// Languages lists the languages the client ships strings for.
var Languages = []string{"en", "hi", "mr"}

// T returns the string for key in lang. Missing entries fall back to the
// key itself.
func T(lang, key string) string {
	if s, ok := translations[lang][key]; ok {
		return s
	}
	return key
}

var quickActionKeys = []string{"quick_stressed", "quick_breathing", "quick_resources"}

// QuickActions returns the canned prompts offered under the chat input.
func QuickActions(lang string) []string {
	out := make([]string, len(quickActionKeys))
	for i, k := range quickActionKeys {
		out[i] = T(lang, k)
	}
	return out
}

// RecognitionLocale maps a language code to the speech recognition locale.
func RecognitionLocale(lang string) string {
	switch strings.ToLower(lang) {
	case "hi":
		return "hi-IN"
	case "mr":
		return "mr-IN"
	default:
		return "en-US"
	}
}

// SpeechLocale maps a language code to the playback voice. Marathi uses the
// Hindi voice.
func SpeechLocale(lang string) string {
	switch strings.ToLower(lang) {
	case "hi", "mr":
		return "hi-IN"
	default:
		return "en-US"
	}
}
