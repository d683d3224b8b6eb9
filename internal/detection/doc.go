// Package detection locates candidate licence plates in an image.
//
// A Localizer returns boxes that probably contain a plate, each with a confidence
// score between 0.0 and 1.0. The plate package crops these boxes and hands them to
// a text reader. Three implementations are provided:
//
//   - EdgeLocalizer: a pure-Go heuristic that slides plate-shaped windows over an
//     edge map and scores them by edge density and stroke structure. It needs no
//     model and is the default.
//   - RemoteLocalizer: posts the image to an external object-detection service
//     (for example a YOLO model behind a small HTTP wrapper) and converts its
//     detections.
//   - RekognitionLocalizer: uses AWS Rekognition DetectLabels and keeps instances
//     of the configured plate labels.
//
// # Coordinate System
//
// Candidate boxes are expressed in the coordinates of the image passed to Detect:
// Min is inclusive (top-left), Max is exclusive (bottom-right), and every box lies
// within the image bounds.
//
// # Thread Safety
//
// All localizers hold only immutable configuration and may be shared between
// goroutines.
package detection
