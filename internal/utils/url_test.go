package utils_test

import (
	"math/rand"
	"strings"

	"ytgrab/internal/utils"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeURL", func() {
	table.DescribeTable("cleans pasted links",
		func(raw string, expected string) {
			Expect(utils.NormalizeURL(raw)).To(Equal(expected))
		},
		table.Entry("quoted markdown link", `"[https://youtu.be/abc123](https://youtu.be/abc123)"`, "https://youtu.be/abc123"),
		table.Entry("markdown link with other text", "[watch this](https://www.youtube.com/watch?v=abc)", "https://www.youtube.com/watch?v=abc"),
		table.Entry("schemeless shorts link", "youtube.com/shorts/xyz", "https://youtube.com/shorts/xyz"),
		table.Entry("schemeless www link", "www.youtube.com/watch?v=q", "https://www.youtube.com/watch?v=q"),
		table.Entry("schemeless short link", "youtu.be/q", "https://youtu.be/q"),
		table.Entry("surrounding whitespace", "  https://youtu.be/q \n", "https://youtu.be/q"),
		table.Entry("single quotes", "'https://youtu.be/q'", "https://youtu.be/q"),
		table.Entry("curly quotes", "“https://youtu.be/q”", "https://youtu.be/q"),
		table.Entry("angle brackets", "<https://youtu.be/q>", "https://youtu.be/q"),
		table.Entry("parentheses", "(https://youtu.be/q)", "https://youtu.be/q"),
		table.Entry("trailing punctuation", "https://youtu.be/q).,;", "https://youtu.be/q"),
		table.Entry("quoted angle brackets", `"<youtu.be/q>"`, "https://youtu.be/q"),
		table.Entry("plain url", "http://example.com/video", "http://example.com/video"),
		table.Entry("empty", "", ""),
		table.Entry("whitespace only", "   ", ""),
		table.Entry("not a url", "hello world", ""),
		table.Entry("empty quotes", `""`, ""),
	)

	It("is idempotent", func() {
		corpus := []string{
			`"[https://youtu.be/abc123](https://youtu.be/abc123)"`,
			`""https://youtu.be/a""`,
			`"(<youtube.com/watch?v=x>)."`,
			"[a](https://x.y/z.)",
			"((https://youtu.be/q))",
			"<<https://youtu.be/q>>",
			"youtu.be",
			"https://",
			"(",
			")",
			"'\"'",
			"“‘https://youtu.be/q’”;",
			"[broken](not a url)",
			"  [x](https://a.b/c)  ",
			"www.youtube.com/watch?v=1,",
		}

		for _, raw := range corpus {
			once := utils.NormalizeURL(raw)
			Expect(utils.NormalizeURL(once)).To(Equal(once), "input %q", raw)
		}
	})

	It("is idempotent over generated pastes", func() {
		for _, raw := range generatedPastes(5000) {
			once := utils.NormalizeURL(raw)
			Expect(utils.NormalizeURL(once)).To(Equal(once), "input %q", raw)

			if lower := strings.ToLower(once); once != "" {
				Expect(strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")).To(BeTrue(), "input %q gave %q", raw, once)
			}
		}
	})

	It("only returns absolute urls or nothing", func() {
		for _, raw := range []string{"ftp://x", "[x](ftp://y)", "youtube", "https://ok"} {
			out := utils.NormalizeURL(raw)
			if out != "" {
				Expect(out).To(HavePrefix("http"))
			}
		}
	})

	It("drops unusable entries from a list", func() {
		urls := utils.NormalizeURLs([]string{"youtu.be/a", "", "  ", "[b](https://youtu.be/b)", "nope"})

		Expect(urls).To(Equal([]string{"https://youtu.be/a", "https://youtu.be/b"}))
	})
})

var (
	pasteOpeners = []string{"", " ", "\t", `"`, "'", "“", "‘", "«", "<", "(", "[", "[x](", "\n"}
	pasteCores   = []string{
		"https://youtu.be/q", "youtu.be/q", "www.youtube.com/watch?v=1&t=2", "youtube.com/shorts/x",
		"http://a.b/c.", "https://", "ftp://x", "hello world", "", "[a](https://x.y/z)", "https://x.y/(a)",
	}
	pasteClosers = []string{"", " ", `"`, "'", "”", "’", "»", ">", ")", "]", ".", ",", ";", ").", "](", "\n"}
)

// generatedPastes wraps every core in every single opener and closer, then
// adds n random stacks of several wrappers. The seed is fixed.
func generatedPastes(n int) []string {
	var pastes []string
	for _, open := range pasteOpeners {
		for _, core := range pasteCores {
			for _, closing := range pasteClosers {
				pastes = append(pastes, open+core+closing)
			}
		}
	}

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		paste := pasteCores[rnd.Intn(len(pasteCores))]
		for depth := rnd.Intn(5); depth > 0; depth-- {
			paste = pasteOpeners[rnd.Intn(len(pasteOpeners))] + paste + pasteClosers[rnd.Intn(len(pasteClosers))]
		}
		pastes = append(pastes, paste)
	}

	return pastes
}
