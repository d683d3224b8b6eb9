// Package plate finds vehicle registration numbers in photographs.
//
// It combines an ocr.Reader and a detection.Localizer in two pipelines:
//
//   - Evaluator runs a cascade of read strategies on the whole image and keeps the
//     best reading. It is permissive and always returns something when any text
//     that looks like a plate was read, reporting low-confidence results as such.
//   - AccurateDetector only reads boxes the localizer found and scores each
//     reading by both the localizer and the reader.
//
// # Results
//
// Evaluator returns a Result. A zero Result means nothing was found; a Result
// whose confidence does not exceed SuccessThreshold is a low-confidence reading.
// AccurateDetector returns a *Detection, nil when no reading qualifies.
//
// # Plate Formats
//
// CleanPlate recognizes Indian registration formats such as KA01AB1234, TS09AB1234
// and DL1CD2345. Clean only normalizes text to uppercase letters and digits.
//
// # Errors
//
// Reader and localizer errors abort a detection and are returned wrapped with the
// failing step. No partial result is returned with an error.
//
// # Thread Safety
//
// Evaluator and AccurateDetector hold no per-call state and are safe for
// concurrent use when their reader and localizer are.
package plate
