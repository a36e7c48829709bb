package util_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
	"github.com/scality/s3-tool-plugin/pkg/util"
)

var _ = Describe("StorageClientParameters", func() {
	Context("NewStorageClientParameters", func() {
		It("should initialize default parameters", func() {
			params := util.NewStorageClientParameters()

			Expect(params.Region).To(Equal(util.DefaultRegion))
			Expect(params.RetryMaxAttempts).To(Equal(constants.DefaultRetryAttempts))
			Expect(params.Debug).To(BeFalse())
			Expect(params.AccessKeyID).To(BeEmpty())
			Expect(params.SecretAccessKey).To(BeEmpty())
			Expect(params.Endpoint).To(BeEmpty())
			Expect(params.CABundle).To(BeNil())
		})
	})

	Context("FetchParameters", func() {
		It("should map every credential key", func() {
			params := util.FetchParameters(util.CredentialSet{
				constants.CredEndpoint:  "https://s3.example.com",
				constants.CredAccessKey: "access",
				constants.CredSecretKey: "secret",
				constants.CredBucket:    "bucket",
				constants.CredCABundle:  "-----BEGIN CERTIFICATE-----",
				constants.CredPublicURL: "https://cdn.example.com/",
				constants.CredRegion:    "eu-west-1",
			})

			Expect(params.Endpoint).To(Equal("https://s3.example.com"))
			Expect(params.AccessKeyID).To(Equal("access"))
			Expect(params.SecretAccessKey).To(Equal("secret"))
			Expect(params.Bucket).To(Equal("bucket"))
			Expect(params.CABundle).To(Equal([]byte("-----BEGIN CERTIFICATE-----")))
			Expect(params.PublicURL).To(Equal("https://cdn.example.com/"))
			Expect(params.Region).To(Equal("eu-west-1"))
		})

		It("should accept the legacy bucket key", func() {
			params := util.FetchParameters(util.CredentialSet{constants.CredBucketLegacy: "legacy-bucket"})
			Expect(params.Bucket).To(Equal("legacy-bucket"))
		})

		It("should prefer BUCKET_NAME over the legacy key", func() {
			params := util.FetchParameters(util.CredentialSet{
				constants.CredBucket:       "primary",
				constants.CredBucketLegacy: "legacy",
			})
			Expect(params.Bucket).To(Equal("primary"))
		})

		It("should keep the default region when none is provided", func() {
			params := util.FetchParameters(util.CredentialSet{})
			Expect(params.Region).To(Equal(util.DefaultRegion))
			Expect(params.CABundle).To(BeNil())
		})
	})

	Context("Validate", func() {
		var creds util.CredentialSet

		BeforeEach(func() {
			creds = util.CredentialSet{
				constants.CredEndpoint:  "https://test-endpoint",
				constants.CredAccessKey: "test-access-key",
				constants.CredSecretKey: "test-secret-key",
				constants.CredBucket:    "test-bucket",
			}
		})

		It("should validate successfully when all required fields are set", func() {
			Expect(util.FetchParameters(creds).Validate()).To(Succeed())
		})

		DescribeTable("should name the missing credential",
			func(missing string) {
				delete(creds, missing)
				err := util.FetchParameters(creds).Validate()
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(missing))

				var cfgErr *osperrors.ConfigurationError
				Expect(errors.As(err, &cfgErr)).To(BeTrue())
				Expect(cfgErr.Key).To(Equal(missing))
			},
			Entry("endpoint", constants.CredEndpoint),
			Entry("access key", constants.CredAccessKey),
			Entry("secret key", constants.CredSecretKey),
			Entry("bucket", constants.CredBucket),
		)

		It("should treat whitespace-only values as missing", func() {
			creds[constants.CredAccessKey] = "   "
			err := util.FetchParameters(creds).Validate()
			Expect(err).To(MatchError(ContainSubstring(constants.CredAccessKey)))
		})

		It("should mention both bucket keys when the bucket is missing", func() {
			delete(creds, constants.CredBucket)
			err := util.FetchParameters(creds).Validate()
			Expect(err).To(MatchError("Missing bucket credential: BUCKET_NAME or S3_BUCKET"))
		})
	})

	Context("ConfigureTLSTransport", func() {
		It("should verify certificates against the system store by default", func() {
			transport := util.ConfigureTLSTransport(nil)

			Expect(transport).NotTo(BeNil())
			Expect(transport.TLSClientConfig).NotTo(BeNil())
			Expect(transport.TLSClientConfig.InsecureSkipVerify).To(BeFalse())
			Expect(transport.TLSClientConfig.RootCAs).To(BeNil())
		})

		It("should use the provided pool as trust anchor", func() {
			path, err := util.WriteCABundle(selfSignedPEM())
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(util.RemoveCABundle, path)

			pool, err := util.LoadCABundle(path)
			Expect(err).NotTo(HaveOccurred())

			transport := util.ConfigureTLSTransport(pool)
			Expect(transport.TLSClientConfig.InsecureSkipVerify).To(BeFalse())
			Expect(transport.TLSClientConfig.RootCAs).To(BeIdenticalTo(pool))
		})
	})
})
