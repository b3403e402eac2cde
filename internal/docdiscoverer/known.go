package docdiscoverer

// knownDocsHosts maps a normalized API name to its documentation base URL,
// short-circuiting the pattern probe for popular APIs.
var knownDocsHosts = map[string]string{
	"stripe":      "https://docs.stripe.com",
	"openai":      "https://platform.openai.com/docs",
	"anthropic":   "https://docs.anthropic.com",
	"github":      "https://docs.github.com",
	"gitlab":      "https://docs.gitlab.com",
	"twilio":      "https://www.twilio.com/docs",
	"sendgrid":    "https://docs.sendgrid.com",
	"mailgun":     "https://documentation.mailgun.com",
	"aws":         "https://docs.aws.amazon.com",
	"googlecloud": "https://cloud.google.com/docs",
	"azure":       "https://learn.microsoft.com/en-us/azure",
	"firebase":    "https://firebase.google.com/docs",
	"supabase":    "https://supabase.com/docs",
	"vercel":      "https://vercel.com/docs",
	"netlify":     "https://docs.netlify.com",
	"heroku":      "https://devcenter.heroku.com",
	"digitalocean": "https://docs.digitalocean.com",
	"cloudflare":  "https://developers.cloudflare.com",
	"auth0":       "https://auth0.com/docs",
	"okta":        "https://developer.okta.com/docs",
	"slack":       "https://api.slack.com",
	"discord":     "https://discord.com/developers/docs",
	"telegram":    "https://core.telegram.org/bots/api",
	"twitter":     "https://developer.twitter.com/en/docs",
	"x":           "https://developer.x.com/en/docs",
	"facebook":    "https://developers.facebook.com/docs",
	"meta":        "https://developers.facebook.com/docs",
	"instagram":   "https://developers.facebook.com/docs/instagram",
	"linkedin":    "https://learn.microsoft.com/en-us/linkedin",
	"shopify":     "https://shopify.dev/docs",
	"square":      "https://developer.squareup.com/docs",
	"plaid":       "https://plaid.com/docs",
	"paypal":      "https://developer.paypal.com/docs",
	"docker":      "https://docs.docker.com",
	"kubernetes":  "https://kubernetes.io/docs",
	"k8s":         "https://kubernetes.io/docs",
	"terraform":   "https://developer.hashicorp.com/terraform/docs",
	"postgresql":  "https://www.postgresql.org/docs",
	"postgres":    "https://www.postgresql.org/docs",
	"mongodb":     "https://www.mongodb.com/docs",
	"redis":       "https://redis.io/docs",
	"elasticsearch": "https://www.elastic.co/guide",
	"react":       "https://react.dev/reference",
	"vue":         "https://vuejs.org/guide",
	"angular":     "https://angular.dev/overview",
	"django":      "https://docs.djangoproject.com",
	"flask":       "https://flask.palletsprojects.com",
	"fastapi":     "https://fastapi.tiangolo.com",
	"express":     "https://expressjs.com",
	"nextjs":      "https://nextjs.org/docs",
	"nodejs":      "https://nodejs.org/docs",
	"deno":        "https://docs.deno.com",
	"npm":         "https://docs.npmjs.com",
	"pypi":        "https://docs.pypi.org",
	"huggingface": "https://huggingface.co/docs",
	"pinecone":    "https://docs.pinecone.io",
	"datadog":     "https://docs.datadoghq.com",
	"sentry":      "https://docs.sentry.io",
}

// docsPatternTemplates yields candidate URL templates for a normalized
// API name; {n} is substituted with the name.
var docsPatternTemplates = []string{
	"https://docs.{n}.com",
	"https://{n}.com/docs",
	"https://{n}.com/docs/api",
	"https://developers.{n}.com",
	"https://developer.{n}.com",
	"https://{n}.dev",
	"https://docs.{n}.io",
	"https://{n}.io/docs",
}
