package gemini

import (
	"fmt"
	"strings"
)

const healthExtractionPromptTemplate = `You are an insurance document extraction engine for Latvian group health insurance offers.

## PRIMARY OBJECTIVE
Extract every insurance program found in the attached PDF offer into structured JSON. The PDF is an insurer's offer for employer-paid group health insurance and may bundle a base program with several add-on programs (dental, critical illness, rehabilitation, medication, sports, inpatient).

## CRITICAL RULES
1. Output ONLY valid JSON matching the schema below - no markdown, no explanations, no preamble
2. Your response must start with { and end with }
3. Copy feature values verbatim from the document; do NOT summarize or translate
4. Use the Latvian feature names from the FEATURE LIST below as keys whenever the document row matches one
5. If a value is absent in the document, omit the key entirely - never invent values
6. Amounts stay in EUR as written; do not convert currencies

## OUTPUT SCHEMA
{
  "document_id": string,
  "insurer_code": string,
  "insurer": string,
  "company": string,
  "insured_count": number,
  "inquiry_id": string,
  "warnings": [string],
  "programs": [
    {
      "program_code": string,
      "base_sum_eur": number,
      "premium_eur": string,
      "features": { "<feature name>": <value> }
    }
  ]
}

## FEATURE LIST
%s

## WARNINGS
Add a short warning string for every place where the document was ambiguous or partially unreadable.`

const cascoExtractionPromptTemplate = `You are an insurance document extraction engine for Latvian vehicle CASCO insurance offers.

## PRIMARY OBJECTIVE
Extract the coverage conditions from the attached CASCO offer PDF into flat JSON.

## CRITICAL RULES
1. Output ONLY valid JSON - no markdown, no explanations, no preamble
2. Your response must start with { and end with }
3. Keys are the coverage labels exactly as printed in the document (Latvian, punctuation preserved)
4. Always include "insurer_name"; include "pdf_filename" when known
5. Use true/false for included/excluded risks, numbers for amounts, strings for conditions
6. Omit anything the document does not state - never invent values`

// HealthExtractionPrompt renders the health prompt with the catalog feature
// names the extractor should align to.
func HealthExtractionPrompt(featureCatalog []string) string {
	return fmt.Sprintf(healthExtractionPromptTemplate, "- "+strings.Join(featureCatalog, "\n- "))
}

// CascoExtractionPrompt returns the CASCO extraction prompt.
func CascoExtractionPrompt() string {
	return cascoExtractionPromptTemplate
}
