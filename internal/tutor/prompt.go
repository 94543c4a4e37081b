package tutor

import (
	"fmt"
	"strings"

	"github.com/tutorat/tutorat/internal/exercise"
)

const chatSystemPrompt = "Tu es un tuteur intelligent pour des élèves de primaire et collège. " +
	"Tu es patient, encourageant et pédagogique. " +
	"Tes réponses doivent être adaptées au niveau de l'élève. " +
	"N'hésite pas à utiliser des émojis pour être plus convivial."

const generatorSystemPrompt = "Tu es un générateur d'exercices scolaires. Tu réponds uniquement en JSON valide."

const qcmFormat = `- type: 'qcm'
- content: Un objet JSON contenant 'questions' (une liste d'objets, chaque objet ayant 'question' et 'options' qui est une liste de 4 choix)
- correct_answers: Une liste contenant les index des bonnes réponses (ex: [0, 1]) correspondant à chaque question dans 'content.questions'
IMPORTANT pour QCM: Chaque objet question dans 'content.questions' DOIT aussi avoir une clé 'correct_option' (int, 0-3).
`

const classicFormat = `- type: 'classic'
- content: Un objet JSON contenant 'text' (l'énoncé détaillé de l'exercice) et 'questions' (une liste de strings pour les sous-questions)
IMPORTANT pour Classic: 'correct_answers' DOIT OBLIGATOIREMENT être une liste contenant EXACTEMENT le même nombre d'éléments que la liste 'content.questions'. Chaque élément de 'correct_answers' est la correction détaillée de la question au même index, y compris la dernière.
`

const mathInstruction = "IMPORTANT: Puisque c'est un exercice de mathématiques, utilise la notation LaTeX pour toutes les expressions mathématiques " +
	"(ex: $x^2$, $\\frac{1}{2}$, $\\sqrt{x}$). Toutes les formules doivent être entourées de symboles $.\n"

func languageInstruction(subject, language string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "anglais") || strings.Contains(s, "english"):
		return "IMPORTANT: Le contenu de l'exercice (texte, questions, choix) DOIT être en ANGLAIS. Seules les consignes peuvent être en français si nécessaire."
	case strings.Contains(s, "espagnol"):
		return "IMPORTANT: Le contenu de l'exercice DOIT être en ESPAGNOL."
	case strings.Contains(s, "allemand"):
		return "IMPORTANT: Le contenu de l'exercice DOIT être en ALLEMAND."
	}
	name := "Français"
	if language == "en" {
		name = "Anglais"
	}
	return fmt.Sprintf("IMPORTANT: L'exercice (titre, description, questions, options, explications) DOIT être rédigé entièrement en %s.", name)
}

func difficultyLabel(d exercise.Difficulty, language string) string {
	if language != "en" {
		return d.Label()
	}
	switch d {
	case exercise.DifficultyEasy:
		return "Easy"
	case exercise.DifficultyMedium:
		return "Medium"
	case exercise.DifficultyHard:
		return "Hard"
	}
	return string(d)
}

// buildGeneratePrompt writes the user message for an exercise draft.
// p must already carry defaults.
func buildGeneratePrompt(p GenerateParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Génère un exercice de %s pour un niveau %s sur le thème '%s'.\n", p.Subject, p.Level, p.Topic)
	fmt.Fprintf(&b, "Difficulté: %s.\n", difficultyLabel(p.Difficulty, p.Language))
	fmt.Fprintf(&b, "Type: %s.\n", p.Type)
	b.WriteString(languageInstruction(p.Subject, p.Language))
	b.WriteString("\n")
	if strings.Contains(strings.ToLower(p.Subject), "math") {
		b.WriteString(mathInstruction)
	}

	b.WriteString("\nTu DOIS répondre avec un JSON valide respectant cette structure exacte :\n")
	b.WriteString("{\n")
	b.WriteString("  \"title\": \"Titre de l'exercice\",\n")
	b.WriteString("  \"description\": \"Brève description ou consigne\",\n")
	fmt.Fprintf(&b, "  \"type\": %q,\n", p.Type)
	fmt.Fprintf(&b, "  \"difficulty\": %q,\n", p.Difficulty)
	b.WriteString("  \"content\": { ... voir le format ci-dessous ... },\n")
	b.WriteString("  \"correct_answers\": [ ... ],\n")
	b.WriteString("  \"explanation\": \"Explication pédagogique\",\n")
	b.WriteString("  \"hints\": [\"Indice 1\", \"Indice 2\"],\n")
	b.WriteString("  \"points\": 10\n")
	b.WriteString("}\n\n")

	b.WriteString("Format spécifique pour 'content' :\n")
	if p.Type == exercise.TypeClassic {
		b.WriteString(classicFormat)
	} else {
		b.WriteString(qcmFormat)
	}
	b.WriteString("\nRéponds UNIQUEMENT avec le JSON, pas de texte superflu.")
	return b.String()
}
