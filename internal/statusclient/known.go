package statusclient

// knownStatusPages maps a normalized service name to its status page URL.
// Ported from a curated list of 119 entries (several are aliases sharing
// one URL); kept near-verbatim since trimming it would only reintroduce
// guesswork the table exists to avoid.
var knownStatusPages = map[string]string{
	// Payment & Finance
	"stripe": "https://status.stripe.com",
	"paypal": "https://www.paypal-status.com",
	"plaid":  "https://status.plaid.com",
	// Code & DevOps
	"github":    "https://www.githubstatus.com",
	"gitlab":    "https://status.gitlab.com",
	"bitbucket": "https://bitbucket.status.atlassian.com",
	"vercel":    "https://www.vercel-status.com",
	"netlify":   "https://www.netlifystatus.com",
	"heroku":    "https://status.heroku.com",
	"docker":    "https://status.docker.com",
	"dockerhub": "https://status.docker.com",
	"npm":       "https://status.npmjs.org",
	"pypi":      "https://status.python.org",
	"circleci":  "https://status.circleci.com",
	// AI & ML services
	"openai":              "https://status.openai.com",
	"anthropic":           "https://status.anthropic.com",
	"claude":               "https://status.anthropic.com",
	"claudeapi":            "https://status.anthropic.com",
	"anthropicclaudeapi":   "https://status.anthropic.com",
	"gemini":               "https://status.cloud.google.com",
	"googlegemini":         "https://status.cloud.google.com",
	"googlegeminiapi":      "https://status.cloud.google.com",
	"vertexai":             "https://status.cloud.google.com",
	"googlecloudvertexai":  "https://status.cloud.google.com",
	"googlecloud":          "https://status.cloud.google.com",
	"replicate":            "https://replicate.statuspage.io",
	"huggingface":          "https://status.huggingface.co",
	"hf":                   "https://status.huggingface.co",
	"cohere":               "https://status.cohere.com",
	"mistral":              "https://status.mistral.ai",
	"mistralai":            "https://status.mistral.ai",
	"together":             "https://status.together.ai",
	"togetherai":           "https://status.together.ai",
	"groq":                 "https://status.groq.com",
	"perplexity":           "https://status.perplexity.ai",
	"perplexityai":         "https://status.perplexity.ai",
	// Image/video AI
	"fal":                        "https://fal.statuspage.io",
	"falai":                      "https://fal.statuspage.io",
	"midjourney":                 "https://status.midjourney.com",
	"stability":                  "https://status.stability.ai",
	"stabilityai":                "https://status.stability.ai",
	"runway":                     "https://status.runwayml.com",
	"runwayml":                   "https://status.runwayml.com",
	"leonardo":                   "https://status.leonardo.ai",
	"leonardoai":                 "https://status.leonardo.ai",
	"ideogram":                   "https://status.ideogram.ai",
	"flux":                       "https://status.bfl.ml",
	"bfl":                        "https://status.bfl.ml",
	"blackforestlabs":            "https://status.bfl.ml",
	"blackforestlabsbflfluxapi":  "https://status.bfl.ml",
	"bflblackforestlabsfluxapi":  "https://status.bfl.ml",
	// Voice/audio AI
	"elevenlabs": "https://status.elevenlabs.io",
	"11labs":     "https://status.elevenlabs.io",
	"resemble":   "https://status.resemble.ai",
	"assemblyai": "https://status.assemblyai.com",
	"deepgram":   "https://status.deepgram.com",
	// Video AI
	"heygen":   "https://status.heygen.com",
	"descript": "https://status.descript.com",
	"luma":     "https://status.lumalabs.ai",
	"lumalabs": "https://status.lumalabs.ai",
	"pika":     "https://status.pika.art",
	"sync":     "https://status.sync.so",
	"syncso":   "https://status.sync.so",
	"synclabs": "https://status.sync.so",
	// Cloud providers
	"aws":                  "https://health.aws.amazon.com/health/status",
	"amazon":               "https://health.aws.amazon.com/health/status",
	"gcp":                  "https://status.cloud.google.com",
	"googlecloudplatform":  "https://status.cloud.google.com",
	"azure":                "https://status.azure.com",
	"microsoft":            "https://status.azure.com",
	"digitalocean":         "https://status.digitalocean.com",
	"linode":               "https://status.linode.com",
	"vultr":                "https://status.vultr.com",
	"render":               "https://status.render.com",
	"railway":              "https://railway.instatus.com",
	"fly":                  "https://status.fly.io",
	"flyio":                "https://status.fly.io",
	// Databases
	"mongodb":     "https://status.mongodb.com",
	"supabase":    "https://status.supabase.com",
	"planetscale": "https://www.planetscalestatus.com",
	"neon":        "https://neonstatus.com",
	"fauna":       "https://status.fauna.com",
	"redis":       "https://status.redis.com",
	"upstash":     "https://status.upstash.com",
	"cockroachdb": "https://status.cockroachlabs.cloud",
	// Communication
	"twilio":    "https://status.twilio.com",
	"sendgrid":  "https://status.sendgrid.com",
	"mailgun":   "https://status.mailgun.com",
	"postmark":  "https://status.postmarkapp.com",
	"slack":     "https://status.slack.com",
	"discord":   "https://discordstatus.com",
	"zoom":      "https://status.zoom.us",
	"intercom":  "https://www.intercomstatus.com",
	// CDN & DNS
	"cloudflare": "https://www.cloudflarestatus.com",
	"fastly":     "https://status.fastly.com",
	"akamai":     "https://cloudharmony.com/status-for-akamai",
	// Auth & identity
	"auth0": "https://status.auth0.com",
	"okta":  "https://status.okta.com",
	"clerk": "https://status.clerk.com",
	// Analytics & monitoring
	"datadog":   "https://status.datadoghq.com",
	"newrelic":  "https://status.newrelic.com",
	"sentry":    "https://status.sentry.io",
	"mixpanel":  "https://status.mixpanel.com",
	"amplitude": "https://status.amplitude.com",
	"segment":   "https://status.segment.com",
	"posthog":   "https://status.posthog.com",
	// Other
	"notion":     "https://status.notion.so",
	"airtable":   "https://status.airtable.com",
	"figma":      "https://status.figma.com",
	"linear":     "https://linearstatus.com",
	"jira":       "https://jira-software.status.atlassian.com",
	"confluence": "https://confluence.status.atlassian.com",
	"atlassian":  "https://status.atlassian.com",
	"shopify":    "https://www.shopifystatus.com",
	"algolia":    "https://status.algolia.com",
	"pinecone":   "https://status.pinecone.io",
	"weaviate":   "https://status.weaviate.io",
	"qdrant":     "https://status.qdrant.io",
	"milvus":     "https://status.milvus.io",
}

// serviceAliases maps a free-form service description to its canonical
// lookup key in knownStatusPages.
var serviceAliases = map[string]string{
	"anthropic claude":     "anthropic",
	"anthropic claude api": "anthropic",
	"claude api":           "anthropic",
	"claude":               "anthropic",

	"google cloud":             "gcp",
	"google cloud platform":    "gcp",
	"google cloud vertex ai":   "vertexai",
	"vertex ai":                "vertexai",
	"google gemini":            "gemini",
	"google gemini api":        "gemini",
	"gemini api":               "gemini",

	"fal.ai":     "fal",
	"fal ai":     "fal",
	"fal.ai api": "fal",

	"black forest labs":              "bfl",
	"black forest labs flux":         "bfl",
	"bfl flux":                       "bfl",
	"flux api":                       "bfl",
	"black forest labs bfl flux api": "bfl",
	"bfl black forest labs flux api": "bfl",

	"sync.so":   "sync",
	"sync labs": "sync",

	"eleven labs":   "elevenlabs",
	"stability ai":  "stability",
	"runway ml":     "runway",
	"leonardo ai":   "leonardo",
	"hugging face":  "huggingface",
	"together ai":   "together",
	"mistral ai":    "mistral",
	"perplexity ai": "perplexity",
	"luma labs":     "luma",
	"fly.io":        "fly",
}

// statusPagePatterns are tried in order against the normalized service
// name when no known/alias entry matches.
var statusPagePatterns = []string{
	"https://status.{service}.com",
	"https://status.{service}.io",
	"https://status.{service}.ai",
	"https://{service}.statuspage.io",
	"https://{service}.instatus.com",
	"https://{service}status.com",
	"https://www.{service}status.com",
	"https://{service}.com/status",
}
