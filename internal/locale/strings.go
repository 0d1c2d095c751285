package locale

import (
	"fmt"
	"strconv"
)

// Fixed per-locale voice strings. These are static templates, not machine
// translation; the confirmation message itself always arrives from the
// classifier already rendered in the active language.

var retryPrompts = map[Language]string{
	Hindi:    "कृपया फिर से बोलें।",
	Marathi:  "कृपया पुन्हा बोला.",
	Gujarati: "કૃપા કરીને ફરી બોલો.",
	English:  "Please try speaking again.",
}

var genericFailures = map[Language]string{
	Hindi:    "कुछ गलत हो गया।",
	Marathi:  "काहीतरी चूक झाली.",
	Gujarati: "કંઈક ભૂલ થઈ છે.",
	English:  "Something went wrong.",
}

var savedMessages = map[Language]string{
	Hindi:    "सहेज लिया गया।",
	Marathi:  "जतन केले.",
	Gujarati: "સાચવી લીધું.",
	English:  "Saved.",
}

// RetryPrompt is spoken and shown after a failed speech capture.
func RetryPrompt(lang Language) string {
	return lookup(retryPrompts, lang)
}

// GenericFailure is the collapsed message for classification and
// persistence failures.
func GenericFailure(lang Language) string {
	return lookup(genericFailures, lang)
}

// Saved acknowledges a committed record.
func Saved(lang Language) string {
	return lookup(savedMessages, lang)
}

// FinancialSummary renders the fixed per-locale sentence reporting net
// profit and the predicted profit for the next period. It is appended to a
// query confirmation when the local keyword classifier flags a financial
// question.
func FinancialSummary(lang Language, netProfit, predictedProfit float64) string {
	net := FormatAmount(netProfit)
	predicted := FormatAmount(predictedProfit)
	switch lang {
	case Hindi:
		return fmt.Sprintf("। आपका कुल लाभ %s रुपये है। अगले महीने का अनुमानित लाभ %s है।", net, predicted)
	case Marathi:
		return fmt.Sprintf("। तुमचा निव्वळ नफा %s रुपये आहे. पुढच्या महिन्याचा अंदाज %s रुपये आहे.", net, predicted)
	case Gujarati:
		return fmt.Sprintf("। તમારો ચોખ્ખો નફો %s રૂપિયા છે. આવતા મહિનાનો અંદાજિત નફો %s છે.", net, predicted)
	default:
		return fmt.Sprintf(". Your net profit is %s rupees. Next month prediction: %s.", net, predicted)
	}
}

// FormatAmount renders a rupee amount without a trailing fractional part
// when the value is whole.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lookup(table map[Language]string, lang Language) string {
	if s, ok := table[lang]; ok {
		return s
	}
	return table[English]
}
