package generator

import (
	"fmt"
	"strings"

	"github.com/tdlm/content-bot/internal/domain"
)

const systemPrompt = "Responde siempre en JSON válido, sin markdown."

const promptTemplate = `Eres redactora legal y consultiva del despacho "Tu Derecho Laboral México".
Objetivo: crear un borrador de blog MUY humano, sensible y útil para una persona trabajadora.
Debe ser orientativo, sin prometer resultados, y con disclaimer claro: "orientación informativa; no constituye asesoría legal".

TEMA: %s
PALABRAS_CLAVE: %s

BASE (Conocimiento_AI; úsala como fundamento y NO inventes leyes):
%s

FORMATO:
- Devuelve ÚNICAMENTE JSON válido con estas llaves:
  {
    "title": "...",
    "excerpt": "...",
    "html": "..."
  }
- "html" debe incluir:
  - H2/H3, bullets, y una sección "Qué hacer hoy"
  - una sección "Documentos que ayudan"
  - una sección "Errores comunes"
  - cierre con CTA: %s
  - tono McKinsey: ordenado, claro, ejecutivo pero empático

RESTRICCIONES:
- Español (México)
- Nada de "garantizamos" / nada de promesas
- No des consejos ilegales
- Incluye disclaimer al final`

// composePrompt fills the prompt template with the topic, keywords, and the
// selected knowledge entries.
func composePrompt(topic, keywords string, picked []domain.KnowledgeEntry, cta string) string {
	var base strings.Builder
	for _, k := range picked {
		fmt.Fprintf(&base, "- TEMA_BASE: %s\n  CONTENIDO_LEGAL: %s\n  FUENTE: %s\n\n",
			k.Title, k.Content, k.Source)
	}

	return strings.TrimSpace(fmt.Sprintf(promptTemplate, topic, keywords, base.String(), cta))
}
