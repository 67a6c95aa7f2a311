package types

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex contract_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

// initializeSID initializes the shortid generator once
func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortID returns a short unique identifier for display codes
func GenerateShortID() string {
	once.Do(initializeSID)
	id, err := sidGenerator.Generate()
	if err != nil {
		return GenerateUUID()
	}
	return id
}

const (
	UUID_PREFIX_CONTRACT             = "contract"
	UUID_PREFIX_SUBSCRIPTION         = "subs"
	UUID_PREFIX_PLAN                 = "plan"
	UUID_PREFIX_CANCELLATION_REQUEST = "cxl"
	UUID_PREFIX_RETENTION_OFFER      = "offer"
	UUID_PREFIX_SCHEDULED_CHANGE     = "spc"
	UUID_PREFIX_PLAN_CHANGE_HISTORY  = "pch"
	UUID_PREFIX_FREEZE_BALANCE       = "frz"
	UUID_PREFIX_FREEZE_ENTRY         = "fent"
	UUID_PREFIX_FREEZE_HISTORY       = "fhz"
	UUID_PREFIX_FREEZE_PACKAGE       = "fpkg"
	UUID_PREFIX_EXIT_SURVEY          = "survey"
	UUID_PREFIX_MEMBER               = "member"
)
