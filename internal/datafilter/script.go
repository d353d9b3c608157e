package datafilter

import (
	"strconv"
	"strings"

	"github.com/rpattn/dataview/internal/domain"
)

// FilterCompareScriptKey identifies the compare toggle script. Pages include
// it once.
const FilterCompareScriptKey = "js-filter-compare-change-script"

// FilterCompareScript hides the operand controls of a filter row while a
// blank check is selected in its operator drop down.
const FilterCompareScript = `
$('.js-filter-compare').change( function () {
    var $fieldCriteriaRow = $(this).closest('.field-criteria');
    var compareValue = $(this).val();
    var isNullCompare = (compareValue == 32 || compareValue == 64);
    if (isNullCompare) {
        $fieldCriteriaRow.find('.js-filter-control').hide();
    }
    else {
        $fieldCriteriaRow.find('.js-filter-control').show();
    }
});
`

// IsNullCompare reports whether an operator drop down value selects one of
// the blank checks, mirroring the compare toggle script.
func IsNullCompare(value string) bool {
	code, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return domain.ComparisonType(code).IsNullCompare()
}
