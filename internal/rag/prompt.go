package rag

// Fixed markers substituted into prompts when a section has no content.
// Tests and prompt consumers rely on these appearing verbatim.
const (
	// NoHistoryMarker replaces the history render for a fresh session.
	NoHistoryMarker = "(no prior conversation)"

	// NoContextMarker replaces the context section when retrieval returned
	// nothing. The generation model, not the assembler, decides how to
	// answer an empty context.
	NoContextMarker = "(no retrieved context)"

	// NoReserveMarker replaces the unused-fragments section of the
	// suggestion prompt when the last turn consumed every fragment.
	NoReserveMarker = "(no unused information)"
)

// analystInstructions is the fixed multi-part instruction block embedded in
// every generation prompt: output structure, numeric formatting, language
// directive. The response language is Arabic.
const analystInstructions = `You are an expert economic analyst. Your task is to provide detailed, structured, and accurate responses to user queries based on the context provided. Follow these guidelines:

1. Structure Your Response:
- Start with a clear title summarizing the topic.
- Use bullet points or numbered lists for clarity.
- Break down the response into logical sections (e.g., Overview, Key Sectors, Trends, Economic Indicators).

2. For Financial Queries:
- Include specific figures (e.g., $X billion, X%).
- Use financial formatting (e.g., $M/$B, percentages).
- Highlight key trends, comparisons, and changes over time.
- Provide formulas or calculations if relevant.

3. For Descriptive Queries:
- Explain concepts clearly and concisely.
- Use examples or analogies if helpful.
- Describe relationships between concepts or document types.

4. Data Presentation:
- Always include specific numbers and percentages.
- Compare data across years or sectors where applicable.
- Highlight notable trends, increases, or decreases.

5. Tone and Language:
- Respond in Arabic.
- Use a professional and informative tone.
- Avoid vague language; be precise and data-driven.`

// analystExample is the worked example appended after the query so the model
// mirrors its layout, figures formatting and source attribution.
const analystExample = `Example Response Format:
عنوان: نظرة عامة على النفقات المالية لعام 2014

إجمالي النفقات: $X تريليون

القطاعات الرئيسية:
• الدفاع: $X مليار (X% من الإجمالي)
• الرعاية الصحية: $X مليار (X% من الإجمالي)
• التعليم: $X مليار (X% من الإجمالي)
• البنية التحتية: $X مليار (X% من الإجمالي)
• الضمان الاجتماعي: $X مليار (X% من الإجمالي)

الاتجاهات البارزة:
• زيادة بنسبة X% في الإنفاق على الرعاية الصحية مقارنة بعام 2013
• انخفاض بنسبة X% في الإنفاق التقديري
• القطاع الأسرع نموًا: [القطاع] (+X%)
• أكبر انخفاض: [القطاع] (-X%)

المؤشرات الاقتصادية الرئيسية:
• الناتج المحلي الإجمالي: $X تريليون
• العجز: $X مليار
• نسبة الدين إلى الناتج المحلي الإجمالي: X%
• معدل التضخم: X%

[المصدر: file_name]`

// suggestionInstructions asks for exactly three follow-up questions as plain
// lines. The reply is parsed best-effort; the model is not guaranteed to
// honor the count or the formatting.
const suggestionInstructions = `You are assisting a user exploring economic documents. Below is information that was retrieved for the user's last question but not used in the answer, followed by the recent conversation.

Propose exactly three follow-up questions the user could ask next. Each question must be answerable from the unused information. Write the questions in Arabic, one per line, as plain text with no numbering, bullets, or markup.`
