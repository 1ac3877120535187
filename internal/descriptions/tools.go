package descriptions

// Tool descriptions shown to MCP clients

const (
	DrawParseFileDescription = `Convert a DD Form 2977 Deliberate Risk Assessment Worksheet (DRAW) PDF into canonical JSON.

**When to use:** You have a DRAW PDF on disk and need its mission, preparer, subtask risk table, overall residual risk and approval decision as structured data.

**How it works:** The embedded XFA form dataset is read first. When the PDF has none, or it does not match the DD2977 layout, the text layer is extracted (native text, then layout rows, then OCR) and parsed heuristically.

**Examples:**
• Parse one worksheet: "Convert /data/draws/convoy-20240318.pdf to JSON"
• Scanned form: "Parse scanned-draw.pdf with force_ocr set to true"

**Result:** The record JSON. Risk levels are the codes L, M, H or EH where they could be recognized. Fields the document does not carry are null.

**Errors:** An XFA-only form whose dataset cannot be decoded is reported as UNRENDERABLE_FORM, distinct from UNREADABLE (broken file) and NO_TEXT (no backend produced text).`

	DrawParseTextDescription = `Parse the plain text of a DRAW worksheet that was already extracted elsewhere.

**When to use:** The text came from another tool, a copy and paste, or an OCR service and you want the same record the file parser would build from it.

**Examples:**
• "Parse this pasted DD2977 text into JSON"

**Result:** The record JSON built by the heuristic text parser only. No file access takes place.`
)
