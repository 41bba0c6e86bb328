package dropbox_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"ytgrab/internal/client/dropbox"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dropbox Client", func() {
	Describe("PreparePath", func() {
		It("makes paths absolute and safe", func() {
			Expect(dropbox.PreparePath("youtube/downloads/a:b?.mkv")).To(Equal("/youtube/downloads/a_b_.mkv"))
			Expect(dropbox.PreparePath(" /x/../y ")).To(Equal("/y"))
		})
	})

	Describe("GetAccessToken", func() {
		var (
			server *httptest.Server
			form   map[string]string
			status int
		)

		BeforeEach(func() {
			status = http.StatusOK
			form = map[string]string{}
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				for key := range r.PostForm {
					form[key] = r.PostForm.Get(key)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"access_token":"sl.token","token_type":"bearer","expires_in":14400}`))
			}))
		})

		AfterEach(func() {
			server.Close()
		})

		It("exchanges the refresh token", func() {
			client := dropbox.NewClient("refresh", "key", "secret", "youtube", false)
			client.SetTokenURL(server.URL)

			token, err := client.GetAccessToken()
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("sl.token"))
			Expect(form).To(HaveKeyWithValue("grant_type", "refresh_token"))
			Expect(form).To(HaveKeyWithValue("client_id", "key"))
		})

		It("fails on a rejected refresh token", func() {
			status = http.StatusBadRequest
			client := dropbox.NewClient("refresh", "key", "secret", "youtube", false)
			client.SetTokenURL(server.URL)

			_, err := client.GetAccessToken()
			Expect(err).To(MatchError(ContainSubstring("400")))
		})
	})

	Describe("UploadFile", func() {
		var (
			server *httptest.Server
			dir    string
			local  string
			fake   *dropbox.FakeSession
		)

		newClient := func(removeLocal bool) *dropbox.Client {
			client := dropbox.NewClient("refresh", "key", "secret", "youtube", removeLocal)
			client.SetTokenURL(server.URL)
			client.SetChunkSize(4)
			client.SetSession(fake)
			return client
		}

		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"access_token":"sl.token"}`))
			}))

			var err error
			dir, err = os.MkdirTemp("", "ytgrab-dropbox-*")
			Expect(err).NotTo(HaveOccurred())

			local = filepath.Join(dir, "clip.mkv")
			Expect(os.WriteFile(local, []byte("hello world!"), 0644)).To(Succeed())

			fake = &dropbox.FakeSession{ID: "session-1"}
		})

		AfterEach(func() {
			server.Close()
			Expect(os.RemoveAll(dir)).To(Succeed())
		})

		It("appends the file in chunks and commits it under the base path", func() {
			remote, err := newClient(false).UploadFile(local)
			Expect(err).NotTo(HaveOccurred())
			Expect(remote).To(Equal("/youtube/clip.mkv"))

			Expect(fake.StartCalls).To(Equal(1))
			Expect(fake.Chunks).To(Equal([]string{"hell", "o wo", "rld!"}))
			Expect(fake.Offsets).To(Equal([]uint64{0, 4, 8}))
			Expect(fake.Closed).To(Equal([]bool{false, false, true}))
			Expect(fake.Finished).To(Equal("/youtube/clip.mkv"))
			Expect(fake.FinalSize).To(BeEquivalentTo(12))

			Expect(local).To(BeAnExistingFile())
		})

		It("sends a short last chunk", func() {
			Expect(os.WriteFile(local, []byte("hello"), 0644)).To(Succeed())

			_, err := newClient(false).UploadFile(local)
			Expect(err).NotTo(HaveOccurred())
			Expect(fake.Chunks).To(Equal([]string{"hell", "o"}))
			Expect(fake.Closed).To(Equal([]bool{false, true}))
		})

		It("removes the local copy when configured to", func() {
			_, err := newClient(true).UploadFile(local)
			Expect(err).NotTo(HaveOccurred())
			Expect(local).NotTo(BeAnExistingFile())
		})

		It("keeps the local copy when a chunk is rejected", func() {
			fake.AppendErr = errors.New("too_many_write_operations")

			_, err := newClient(true).UploadFile(local)
			Expect(err).To(MatchError(ContainSubstring("append chunk at 0")))
			Expect(fake.Finished).To(BeEmpty())
			Expect(local).To(BeAnExistingFile())
		})
	})
})
