package application

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/stwcert/internal/domain"
)

const (
	gridColumns          = 8
	gridSortColumn       = 6
	gridPageSize         = 10
	gridEcho             = 5
	certificateInfoCell  = 5
	requestTokenField    = "__RequestVerificationToken"
	requestTokenSelector = `input[name="__RequestVerificationToken"]`
)

// gridQuery builds the paging/sorting request the certificate table sends.
// The first and last columns hold the row selector and actions and are not
// sortable.
func gridQuery(site domain.SiteInfo) url.Values {
	values := url.Values{}
	values.Set("sEcho", strconv.Itoa(gridEcho))
	values.Set("iColumns", strconv.Itoa(gridColumns))
	values.Set("sColumns", strings.Repeat(",", gridColumns-1))
	values.Set("iDisplayStart", "0")
	values.Set("iDisplayLength", strconv.Itoa(gridPageSize))

	for col := 0; col < gridColumns; col++ {
		n := strconv.Itoa(col)
		values.Set("mDataProp_"+n, n)
		values.Set("sSearch_"+n, "")
		values.Set("bRegex_"+n, "false")
		values.Set("bSearchable_"+n, "true")
		values.Set("bSortable_"+n, strconv.FormatBool(col != 0 && col != gridColumns-1))
	}

	values.Set("sSearch", site.Label)
	values.Set("bRegex", "false")
	values.Set("iSortingCols", "1")
	values.Set("iSortCol_0", strconv.Itoa(gridSortColumn))
	values.Set("iSortDir_0", "asc")
	values.Set("adSearchQuery", site.GUID)
	values.Set("dName", site.Label)

	return values
}
