package utils_test

import (
	"os"
	"path/filepath"

	"ytgrab/internal/utils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Files", func() {
	Describe("SanitizeFilename", func() {
		It("replaces forbidden characters", func() {
			Expect(utils.SanitizeFilename(`a<b>c:d"e/f\g|h?i*j`)).To(Equal("a_b_c_d_e_f_g_h_i_j"))
		})

		It("trims dots and whitespace at both ends", func() {
			Expect(utils.SanitizeFilename("  ..My Video..  ")).To(Equal("My Video"))
			Expect(utils.SanitizeFilename(". x .")).To(Equal("x"))
		})

		It("keeps unicode titles", func() {
			Expect(utils.SanitizeFilename("Курцхаар: охота")).To(Equal("Курцхаар_ охота"))
		})
	})

	Describe("Title", func() {
		It("falls back to the index", func() {
			Expect(utils.Title(" ... ", 7)).To(Equal("video_7"))
			Expect(utils.Title("clip", 7)).To(Equal("clip"))
		})
	})

	Describe("FindFileByName", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "ytgrab-find-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(os.RemoveAll(dir)).To(Succeed())
		})

		It("finds the merged output and ignores partial files", func() {
			Expect(os.WriteFile(filepath.Join(dir, "clip.f313.webm.part"), []byte("x"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "clip.mkv"), []byte("x"), 0644)).To(Succeed())

			found, err := utils.FindFileByName(dir, "clip")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(Equal(filepath.Join(dir, "clip.mkv")))
		})

		It("does not take another title that starts with the same words", func() {
			Expect(os.WriteFile(filepath.Join(dir, "Intro.Part 2.mkv"), []byte("x"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "Intro.mkv"), []byte("x"), 0644)).To(Succeed())

			found, err := utils.FindFileByName(dir, "Intro")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(Equal(filepath.Join(dir, "Intro.mkv")))
		})

		It("skips unmerged format streams", func() {
			Expect(os.WriteFile(filepath.Join(dir, "clip.f313.webm"), []byte("x"), 0644)).To(Succeed())

			_, err := utils.FindFileByName(dir, "clip")
			Expect(err).To(HaveOccurred())
		})

		It("does not look into subdirectories", func() {
			Expect(os.Mkdir(filepath.Join(dir, "old"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "old", "clip.mkv"), []byte("x"), 0644)).To(Succeed())

			_, err := utils.FindFileByName(dir, "clip")
			Expect(err).To(HaveOccurred())
		})

		It("reports a missing file", func() {
			_, err := utils.FindFileByName(dir, "nothing")
			Expect(err).To(HaveOccurred())
		})
	})
})
