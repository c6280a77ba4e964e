package pages

import (
	"fmt"
	"html"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        pre {
            white-space: pre-wrap;
            word-wrap: break-word;
        }
    </style>
</head>
<body>
    <h1>%[1]s</h1>
    <pre>%[2]s</pre>
</body>
</html>`

const privacyText = `nullscape stores only what it needs to answer commands.

- Presets created by administrators (id, name, description and tags) are kept in the bot's database.
- Runtime settings such as the per-minute request limit are kept in the bot's database.
- Prompts you send to /draw and /convert are processed in memory and written to the operator's logs together with your Discord user id.
- Per-user usage counters are kept in memory and are lost when the bot restarts.
- Errors may be reported to the operator's error tracker with the command name and your Discord user id.

Nothing is sold or shared with third parties beyond the image backend the operator configures.`

const termsText = `By using nullscape you agree to the following.

- Do not use the bot to generate content that breaks Discord's Terms of Service or the rules of the server you are in.
- Requests are rate limited. Attempts to get around the limit may get you blocked.
- Generated content is provided as is, without warranty.
- Administrators may change presets and settings at any time.`

// Render fills the page layout. body is HTML-escaped.
func Render(title, body string) string {
	return fmt.Sprintf(layout, html.EscapeString(title), html.EscapeString(body))
}

func PrivacyPolicy() string {
	return Render("Privacy Policy", privacyText)
}

func TermsOfService() string {
	return Render("Terms of Service", termsText)
}
