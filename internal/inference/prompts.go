package inference

// Prompt templates for the fan-out calls. Wording is deliberately plain;
// each template constrains the output shape so the parser stays simple.

const systemRole = "You are a career intelligence engine. Answer precisely in the requested format with no extra commentary."

const domainPromptTmpl = `Classify the single most fitting professional career domain for someone with these skills:
%s
Return only the domain name, e.g. "Data Analytics".`

const rolePromptTmpl = `Suggest ONE high-growth career role in the %s domain for someone with these skills:
%s
Return only the role name.`

const growthPromptTmpl = `For a %s, list %d future growth skills worth learning next.
Return comma-separated skill names only.`

const certPromptTmpl = `List %d trending certifications for a %s.
Return comma-separated certification names only.`

const platformPromptTmpl = `List learning platforms for someone becoming a %s.
Return strict JSON only, shaped exactly like:
{"free":[{"name":"...","url":"..."}],"paid":[{"name":"...","url":"..."}]}`

const marketPromptTmpl = `Write a short market outlook (3-4 sentences) for the role of %s in the %s domain: demand, salary trend, and where the role is heading.`

const confidencePromptTmpl = `In 2-3 sentences, describe the confidence and risk profile of recommending the role %s to someone whose current skills are: %s. Mention the biggest gap.`
