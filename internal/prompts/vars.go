// internal/prompts/vars.go
package prompts

// Shared by both prompts. The emoji and color conventions are rendered by the
// calendar frontend.
const formattingRules = `Advanced Formatting:
1. For feature additions, prefix with 🆕
2. For bug fixes, prefix with 🐛
3. For performance improvements, prefix with ⚡
4. For security improvements, prefix with 🔒
5. For refactorings, prefix with ♻️
6. For documentation, prefix with 📝
7. For critical items, wrap in <span style="color: #e11d48">critical text</span>
8. For positive impacts, wrap in <span style="color: #22c55e">positive text</span>
9. For file paths or code elements, use ` + "`code`" + ` backticks`

const commitSections = `IMPORTANT FORMATTING GUIDELINES:
Create a well-structured summary with the following sections using HTML/Markdown mixed formatting:

SECTION 1: "WHAT CHANGED"
- Use ### for the section heading
- A single concise sentence overview of the commit
- Then 2-3 bullet points with specific technical details about what was changed
- Be precise about components, files, or systems affected
- For important points, use **bold** formatting

SECTION 2: "TECHNICAL IMPACT" (When relevant)
- Use ### for the section heading
- 1-2 bullet points describing technical impact
- Include metrics if possible (e.g., "Reduced page load time by ~20%")
- Note performance, security, or architectural implications
- Wrap numbers/metrics in inline code blocks using backticks for emphasis`

const commitStyle = `Follow these style rules:
1. Use Markdown formatting with HTML for color highlights
2. Be technical and specific, focusing on what and how (not why)
3. Code elements should be in backticks (e.g., ` + "`function()`" + `)
4. Keep the entire summary concise (max 150 words)`

const commitExample = `Example:

### WHAT CHANGED
Enhanced JWT authentication security in the auth middleware.

- 🔒 Added explicit algorithm verification in ` + "`jwt.verify()`" + ` calls to prevent <span style="color: #e11d48">signature bypass attacks</span>
- 🐛 Updated error handling for invalid tokens with more specific error messages

### TECHNICAL IMPACT
- Mitigated <span style="color: #e11d48">potential security vulnerability</span> that could allow forged tokens
- Improved error logging for authentication failures, aiding in <span style="color: #22c55e">faster troubleshooting</span>`

const dailySections = `IMPORTANT FORMATTING GUIDELINES:
Create a well-structured report with the following sections using HTML/Markdown mixed formatting:

SECTION 1: "SUMMARY OF CHANGES"
- Use ## for the section heading
- Start with a concise 2-3 sentence overview of the day's work
- Then list key changes as bullet points, grouped by type (features, fixes, refactoring)
- Use technical, specific descriptions for each bullet point
- For important points, use **bold** formatting

SECTION 2: "TECHNICAL METRICS"
- Use ## for the section heading
- Present specific metrics about the work completed
- Mention affected components, systems, or areas of the codebase
- Note any technical debt or items needing future attention
- Wrap numbers/metrics in inline code blocks using backticks for emphasis

SECTION 3: "NEXT STEPS" (Optional, only if clearly implied by the commits)
- Use ## for the section heading
- Briefly suggest logical next steps or areas to focus on
- Base this strictly on the commits analyzed, not speculation`

const dailyExample = `Example Output:

## SUMMARY OF CHANGES
Authentication system implementation and payment processing improvements were the main focus of today's development work.

### Features
- 🆕 Added OAuth2 authentication middleware to ` + "`api/auth/middleware.js`" + `

### Fixes
- 🐛 Fixed <span style="color: #e11d48">critical payment processing transaction failures</span>

## TECHNICAL METRICS
Today's work included ` + "`1`" + ` major feature and ` + "`2`" + ` bug fixes across ` + "`7`" + ` files.

## NEXT STEPS
The validation layer still needs refactoring to improve input sanitization.`
