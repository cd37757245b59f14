package descriptions

import "sort"

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Extraction Tools
	EMFExtractTextDescription = `Recover the text drawn by an EMF or EMF+ metafile, or by the metafile inside a print spool (.spl) file.

**When to use:** Need the words a printed page or vector drawing contains, for example an invoice captured from a print queue.

**Why it's useful:** Reads every ExtTextOutW, SmallTextOut and EMF+ DrawString record in playback order and rebuilds line breaks and spaces from the records found between fragments.

**Examples:**
• Read a captured invoice: "Get the text of spool/00017.spl"
• Compare renderers: "Extract invoice.emf in structured mode to see which records carried the text"
• Diagnose gaps: "Extract report.emf with log_failed to list text records that could not be decoded"

**Common workflows:**
1. Print Capture: emf_search_directory → emf_extract_text → parse totals and line items
2. Whitespace Tuning: emf_extract_text → emf_extract_records → adjust --linebreak-any / --space-any → repeat
3. Archive Indexing: emf_search_directory → emf_extract_text for each file → index text

**Best practices:** Use mode "combined" (default) for readable text and "structured" when a downstream parser needs the raw fragments of one record kind.`

	EMFExtractRecordsDescription = `List the records of a metafile in playback order, with the decoded text of text records.

**When to use:** The combined text has missing or extra line breaks and you need to see which records sit between two fragments.

**Why it's useful:** Shows the record names the whitespace rules are written in, including EMF+ records unpacked from GDI comments.

**Examples:**
• Find separators: "List the records of statement.emf to see what separates the address lines"
• Focus on text: "List only EmfExtTextOutW and DrawString records of label.emf"

**Common workflows:**
1. Whitespace Tuning: emf_extract_records → pick the separating record names → restart with --linebreak-any
2. Debugging: emf_extract_text shows failures → emf_extract_records with tags filter → inspect the errors

**Best practices:** Use the tags filter on large files, the default limit is 1000 records.`

	// Basic Tools
	EMFValidateFileDescription = `Verify that a file opens as an EMF metafile or a print spool file holding one.

**When to use:** Before extraction in automated pipelines or when handling files of unknown origin.

**Why it's useful:** Checks size limits, the spool wrapper and the EMF header without walking the records.

**Examples:**
• Batch safety: "Validate all files in /spool/ before bulk extraction"
• Upload check: "Check that upload.emf is a readable metafile"

**Common workflows:**
1. Automated Processing: Validate → Extract if valid → Report errors
2. Quality Control: Validate → Reject damaged spool files

**Best practices:** Run this first on files that come from outside the print pipeline.`

	EMFStatsFileDescription = `Get header fields and record statistics of a metafile.

**When to use:** Need the bounds, frame, description, EMF+ presence or the record mix of a file.

**Why it's useful:** Summarizes a metafile without returning its text, useful to decide how to process it.

**Examples:**
• Inspect a driver: "Get stats of page.emf to see whether text is drawn with EMF+"
• Size check: "How many records does the metafile in 00017.spl contain?"

**Common workflows:**
1. Triage: emf_stats_file → if no text records → text is drawn as paths or bitmaps
2. Driver Comparison: emf_stats_file on output from two drivers → compare record counts

**Best practices:** Record counts are ordered by frequency, the most common kinds come first.`

	// Discovery Tools
	EMFSearchDirectoryDescription = `Find EMF and SPL files in a directory with optional fuzzy filename search.

**When to use:** Need to locate captured pages or spool jobs by name.

**Why it's useful:** Walks subdirectories, skips hidden folders and matches query words in any order.

**Examples:**
• Find by number: "Find invoice 2024 002 in the spool directory"
• List everything: "List all metafiles in /captures/"

**Common workflows:**
1. Discovery: emf_search_directory → emf_extract_text on the matches
2. Inventory: emf_search_directory → emf_stats_directory

**Best practices:** Leave directory empty to search the configured default directory.`

	EMFStatsDirectoryDescription = `Get statistics about the metafiles in a directory.

**When to use:** Need an overview of how many EMF and SPL files a directory holds and how large they are.

**Why it's useful:** Reports counts per container, total and average size and the largest and smallest files.

**Examples:**
• Capacity check: "How much space do the captured spool files take?"
• Overview: "Summarize the contents of /captures/"

**Common workflows:**
1. Monitoring: emf_stats_directory → alert on growth
2. Cleanup: emf_stats_directory → emf_search_directory → archive old files

**Best practices:** Leave directory empty to analyze the configured default directory.`

	// Spool Tools
	SPLExtractEMFDescription = `Write the metafile embedded in a print spool (.spl) file to disk.

**When to use:** Need the bare EMF of a spool job for a viewer or another tool.

**Why it's useful:** Unwraps the spool container and reports whether the payload parses as a metafile.

**Examples:**
• Save a page: "Extract the EMF from 00017.spl"
• Custom output: "Extract the EMF from job.spl to pages/job.emf"

**Common workflows:**
1. Conversion: spl_extract_emf → open the .emf in a viewer
2. Archiving: spl_extract_emf → keep the .emf and discard the spool file

**Best practices:** The output path must differ from the spool path and lie inside the configured directory.`

	EMFServerInfoDescription = `Get server information, whitespace rules and the contents of the default directory.

**When to use:** First call of a session, to learn which files are available and how whitespace is guessed.

**Why it's useful:** Lists the tools, the configured whitespace rules by record name and a cached listing of metafiles.

**Examples:**
• Start of session: "What EMF files can you read?"
• Configuration check: "Which records produce line breaks?"

**Common workflows:**
1. Getting Started: emf_server_info → emf_search_directory → emf_extract_text

**Best practices:** The directory listing is cached for a few minutes, use emf_search_directory for fresh results.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"emf_extract_text":     EMFExtractTextDescription,
	"emf_extract_records":  EMFExtractRecordsDescription,
	"emf_validate_file":    EMFValidateFileDescription,
	"emf_stats_file":       EMFStatsFileDescription,
	"emf_search_directory": EMFSearchDirectoryDescription,
	"emf_stats_directory":  EMFStatsDirectoryDescription,
	"spl_extract_emf":      SPLExtractEMFDescription,
	"emf_server_info":      EMFServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
